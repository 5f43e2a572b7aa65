package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

const formPage = `<html><body>
<form method="post" action="./frmConsultaContingencia.aspx">
<input type="hidden" name="__VIEWSTATE" value="vs-123" />
<input type="hidden" name="__VIEWSTATEGENERATOR" value="gen-1" />
<input type="hidden" name="__EVENTVALIDATION" value="ev-9" />
<select id="cboTipoBusqueda" name="cboTipoBusqueda"><option value="1">Apellidos y Nombres</option></select>
<input id="txtApePaterno" name="txtApePaterno" />
<input id="txtApeMaterno" name="txtApeMaterno" />
<input id="txtPriNombre" name="txtPriNombre" />
<input type="submit" id="btnConsultar" name="btnConsultar" value="Consultar" />
</form>
</body></html>`

func resultPage(rows string) string {
	return fmt.Sprintf(`<html><body><table id="dgConsulta">
<tr><td>#</td><td>Seguro</td><td>Formato</td><td>Afiliación</td><td>Plan</td><td>F. Afiliación</td><td>Vigencia</td><td>Tipo Doc</td><td>Documento</td><td>Ap. Paterno</td><td>Ap. Materno</td><td>Nombres</td><td>F. Nacimiento</td><td>Sexo</td><td>EESS</td><td>Ubicación</td></tr>
%s
<tr><td colspan="16">1</td></tr>
</table></body></html>`, rows)
}

const sampleRow = `<tr><td>1</td><td>SIS</td><td>Electrónico</td><td>0123456789</td><td>PEAS</td><td>01/02/2015</td><td>VIGENTE</td><td>DNI</td><td>45678912</td><td>QUISPE</td><td>MUÐOZ</td><td>MARIA</td><td>15/07/1990</td><td>F</td><td>C.S. SAN MARTIN</td><td>LIMA / LIMA / SAN MARTIN</td></tr>`

func TestExtractRecordsSkipsHeaderAndPager(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resultPage(sampleRow)))
	if err != nil {
		t.Fatalf("parsing fixture: %v", err)
	}

	records := extractRecords(doc)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	record := records[0]
	if record.TipoSeguro != "SIS" {
		t.Errorf("expected tipoSeguro SIS, got %q", record.TipoSeguro)
	}
	if record.NumeroDocumento != "45678912" {
		t.Errorf("expected documento 45678912, got %q", record.NumeroDocumento)
	}
	if record.ApellidoMaterno != "MUÐOZ" {
		t.Errorf("expected raw eth surname, got %q", record.ApellidoMaterno)
	}
	if record.UbicacionEESS != "LIMA / LIMA / SAN MARTIN" {
		t.Errorf("expected ubicacion, got %q", record.UbicacionEESS)
	}
}

func TestExtractRecordsEmptyTable(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<html><body><p>No se encontraron datos</p></body></html>`))
	if err != nil {
		t.Fatalf("parsing fixture: %v", err)
	}

	if records := extractRecords(doc); len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestLookupPersonSubmitsStateAndDecodesEnie(t *testing.T) {
	t.Parallel()

	var posted map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			fmt.Fprint(w, formPage)
		case http.MethodPost:
			if err := r.ParseForm(); err != nil {
				t.Errorf("parsing posted form: %v", err)
			}
			posted = r.PostForm
			fmt.Fprint(w, resultPage(sampleRow))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	defer server.Close()

	client := NewClient(ClientOptions{FormURL: server.URL})

	record, err := client.LookupPerson(context.Background(), "Muñoz", "Quispe", "Maria")
	if err != nil {
		t.Fatalf("LookupPerson returned error: %v", err)
	}

	if got := posted["__VIEWSTATE"]; len(got) != 1 || got[0] != "vs-123" {
		t.Errorf("expected viewstate vs-123 in submission, got %v", got)
	}
	if got := posted["cboTipoBusqueda"]; len(got) != 1 || got[0] != searchByName {
		t.Errorf("expected search type %q, got %v", searchByName, got)
	}
	if got := posted["txtApePaterno"]; len(got) != 1 || got[0] != "Muðoz" {
		t.Errorf("expected enie-encoded surname, got %v", got)
	}

	if record.ApellidoMaterno != "MUÑOZ" {
		t.Errorf("expected decoded surname MUÑOZ, got %q", record.ApellidoMaterno)
	}
}

func TestLookupPersonNotFound(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			fmt.Fprint(w, formPage)
			return
		}
		fmt.Fprint(w, `<html><body><span>No se encontraron datos</span></body></html>`)
	}))
	defer server.Close()

	client := NewClient(ClientOptions{FormURL: server.URL})

	_, err := client.LookupPerson(context.Background(), "Perez", "Gomez", "Juan")
	if err == nil {
		t.Fatal("expected not-found error")
	}
	if !eris.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLookupPersonFailsWithoutPostbackState(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><form></form></body></html>`)
	}))
	defer server.Close()

	client := NewClient(ClientOptions{FormURL: server.URL})

	if _, err := client.LookupPerson(context.Background(), "Perez", "Gomez", "Juan"); err == nil {
		t.Fatal("expected error when postback state is missing")
	}
}

func TestEnieRoundTrip(t *testing.T) {
	t.Parallel()

	if encoded := EncodeEnie("ÑAÑEZ MUñoz"); encoded != "ÐAÐEZ MUðoz" {
		t.Fatalf("unexpected encoding %q", encoded)
	}

	if decoded := DecodeEnie("ÐAÐEZ MUðoz"); decoded != "ÑAÑEZ MUñoz" {
		t.Fatalf("unexpected decoding %q", decoded)
	}

	if passthrough := DecodeEnie("PEREZ"); passthrough != "PEREZ" {
		t.Fatalf("expected plain string untouched, got %q", passthrough)
	}
}
