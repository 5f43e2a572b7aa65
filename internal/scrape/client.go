package scrape

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

// Lookup is the capability the HTTP layer consumes: resolve one person by
// paternal surname, maternal surname and first name.
type Lookup interface {
	LookupPerson(ctx context.Context, fatherLastName, motherLastName, name string) (*PersonRecord, error)
}

// ErrNotFound indicates the lookup completed but matched no person.
var ErrNotFound = eris.New("person not found")

const (
	defaultFormURL   = "https://contingenciasis.minsa.gob.pe/frmConsultaContingencia.aspx"
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0 Safari/537.36"

	searchByName = "1"
)

// ClientOptions configures the form-driven lookup client.
type ClientOptions struct {
	FormURL    string
	UserAgent  string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logrus.Logger
}

// Client drives the upstream WebForms lookup: fetch the form for its postback
// state, submit the filled form, extract the first result row.
type Client struct {
	formURL    string
	userAgent  string
	httpClient *http.Client
	logger     *logrus.Logger
}

var _ Lookup = (*Client)(nil)

// NewClient constructs a lookup client.
func NewClient(opts ClientOptions) *Client {
	formURL := strings.TrimSpace(opts.FormURL)
	if formURL == "" {
		formURL = defaultFormURL
	}

	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 25 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		formURL:    formURL,
		userAgent:  userAgent,
		httpClient: httpClient,
		logger:     opts.Logger,
	}
}

// LookupPerson submits the lookup form and returns the first matching record.
func (c *Client) LookupPerson(ctx context.Context, fatherLastName, motherLastName, name string) (*PersonRecord, error) {
	state, err := c.fetchFormState(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "fetching lookup form")
	}

	form := url.Values{}
	for key, value := range state {
		form.Set(key, value)
	}
	form.Set("cboTipoBusqueda", searchByName)
	form.Set("txtApePaterno", EncodeEnie(fatherLastName))
	form.Set("txtApeMaterno", EncodeEnie(motherLastName))
	form.Set("txtPriNombre", EncodeEnie(name))
	form.Set("btnConsultar", "Consultar")

	doc, err := c.postForm(ctx, form)
	if err != nil {
		return nil, eris.Wrap(err, "submitting lookup form")
	}

	records := extractRecords(doc)
	if len(records) == 0 {
		return nil, ErrNotFound
	}

	record := records[0]
	record.decodeEnie()

	if c.logger != nil {
		c.logger.WithFields(logrus.Fields{
			"rows":      len(records),
			"documento": record.NumeroDocumento,
		}).Debug("lookup form returned results")
	}

	return &record, nil
}

// fetchFormState loads the form page and harvests the hidden postback inputs
// (__VIEWSTATE and friends) required for a valid submission.
func (c *Client) fetchFormState(ctx context.Context) (map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.formURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "building form request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "requesting form page")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("form page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "parsing form page")
	}

	state := make(map[string]string)
	doc.Find("input[type='hidden']").Each(func(_ int, sel *goquery.Selection) {
		name, ok := sel.Attr("name")
		if !ok || name == "" {
			return
		}
		value, _ := sel.Attr("value")
		state[name] = value
	})

	if _, ok := state["__VIEWSTATE"]; !ok {
		return nil, eris.New("form page is missing postback state")
	}

	return state, nil
}

func (c *Client) postForm(ctx context.Context, form url.Values) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.formURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, eris.Wrap(err, "building submit request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "posting form")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, eris.Errorf("form submission returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "parsing result page")
	}

	return doc, nil
}

// extractRecords reads the result grid: every row except the header and the
// trailing pager row, each with at least 15 data cells.
func extractRecords(doc *goquery.Document) []PersonRecord {
	rows := doc.Find("#dgConsulta tr")
	total := rows.Length()

	var records []PersonRecord
	rows.Each(func(i int, row *goquery.Selection) {
		if i == 0 || i == total-1 {
			return
		}

		cols := row.Find("td")
		if cols.Length() < 15 {
			return
		}

		cell := func(idx int) string {
			return strings.TrimSpace(cols.Eq(idx).Text())
		}

		records = append(records, PersonRecord{
			TipoSeguro:       cell(1),
			TipoFormato:      cell(2),
			NumeroAfiliacion: cell(3),
			PlanBeneficios:   cell(4),
			FechaAfiliacion:  cell(5),
			Vigencia:         cell(6),
			TipoDocumento:    cell(7),
			NumeroDocumento:  cell(8),
			ApellidoPaterno:  cell(9),
			ApellidoMaterno:  cell(10),
			Nombres:          cell(11),
			FechaNacimiento:  cell(12),
			Sexo:             cell(13),
			EESS:             cell(14),
			UbicacionEESS:    cell(15),
		})
	})

	return records
}
