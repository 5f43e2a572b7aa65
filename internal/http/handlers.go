package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"sisnames/app/internal/names"
	"sisnames/app/internal/scrape"
)

const jsonContentType = "application/json; charset=utf-8"

type jsonResponse struct {
	Status      int
	ContentType string `header:"Content-Type"`
	Body        []byte
}

type rawBodyInput struct {
	RawBody []byte
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type healthResponse struct {
	Status int
	Body   struct {
		Status    string `json:"status"`
		Generator string `json:"generator"`
		Cache     string `json:"cache"`
	}
}

func (s *Server) registerGenerateNamesRoute() {
	huma.Post(s.api, "/api/generate-names", s.generateNamesHandler, jsonOperation(
		"Generate name variants",
		stdhttp.StatusBadRequest,
		stdhttp.StatusInternalServerError,
	))
}

func (s *Server) registerScrapeDataRoute() {
	huma.Post(s.api, "/api/scrape-data", s.scrapeDataHandler, jsonOperation(
		"Look up a person's insurance record",
		stdhttp.StatusBadRequest,
		stdhttp.StatusNotFound,
		stdhttp.StatusInternalServerError,
	))
}

func (s *Server) registerHealthRoute() {
	huma.Get(s.api, "/healthz", s.healthHandler, func(op *huma.Operation) {
		op.Summary = "Health check"
	})
}

func (s *Server) generateNamesHandler(ctx context.Context, input *rawBodyInput) (*jsonResponse, error) {
	var body struct {
		Name  string `json:"name"`
		Limit int    `json:"limit"`
	}

	if len(input.RawBody) > 0 {
		if err := json.Unmarshal(input.RawBody, &body); err != nil {
			return errorResponse(stdhttp.StatusBadRequest, "request body must be valid JSON", ""), nil
		}
	}

	result, err := s.names.Generate(ctx, names.Query{Name: body.Name, Limit: body.Limit})
	if err != nil {
		if eris.Is(err, names.ErrInvalidQuery) {
			return errorResponse(stdhttp.StatusBadRequest, invalidQueryMessage(err), ""), nil
		}

		s.recordError(ctx, err, "generate-names request failed", logrus.Fields{"name": body.Name})
		return errorResponse(stdhttp.StatusInternalServerError, "upstream generation failed", eris.Cause(err).Error()), nil
	}

	return s.marshalResponse(ctx, stdhttp.StatusOK, result)
}

func (s *Server) scrapeDataHandler(ctx context.Context, input *rawBodyInput) (*jsonResponse, error) {
	var body struct {
		FatherLastName string `json:"fatherLastName"`
		MotherLastName string `json:"motherLastName"`
		Name           string `json:"name"`
	}

	if len(input.RawBody) > 0 {
		if err := json.Unmarshal(input.RawBody, &body); err != nil {
			return errorResponse(stdhttp.StatusBadRequest, "request body must be valid JSON", ""), nil
		}
	}

	if strings.TrimSpace(body.FatherLastName) == "" ||
		strings.TrimSpace(body.MotherLastName) == "" ||
		strings.TrimSpace(body.Name) == "" {
		return errorResponse(stdhttp.StatusBadRequest, "father last name, mother last name and name are required", ""), nil
	}

	record, err := s.lookup.LookupPerson(ctx, body.FatherLastName, body.MotherLastName, body.Name)
	if err != nil {
		if eris.Is(err, scrape.ErrNotFound) {
			return errorResponse(stdhttp.StatusNotFound, "no matching person found", ""), nil
		}

		s.recordError(ctx, err, "scrape-data request failed", nil)
		return errorResponse(stdhttp.StatusInternalServerError, "person lookup failed", eris.Cause(err).Error()), nil
	}

	return s.marshalResponse(ctx, stdhttp.StatusOK, record)
}

func (s *Server) healthHandler(ctx context.Context, _ *struct{}) (*healthResponse, error) {
	resp := &healthResponse{Status: stdhttp.StatusOK}
	resp.Body.Status = "ok"
	resp.Body.Generator = "ready"

	if s.cacheEnabled {
		resp.Body.Cache = "enabled"
	} else {
		resp.Body.Cache = "disabled"
	}

	return resp, nil
}

func (s *Server) marshalResponse(ctx context.Context, status int, payload any) (*jsonResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		s.recordError(ctx, err, "encoding response body", nil)
		return errorResponse(stdhttp.StatusInternalServerError, "failed to encode response", ""), nil
	}
	return newJSONResponse(status, body), nil
}

func newJSONResponse(status int, body []byte) *jsonResponse {
	return &jsonResponse{
		Status:      status,
		ContentType: jsonContentType,
		Body:        body,
	}
}

func errorResponse(status int, message, details string) *jsonResponse {
	body, _ := json.Marshal(errorBody{Error: message, Details: details})
	return newJSONResponse(status, body)
}

// invalidQueryMessage strips the classification sentinel from a validation
// error, leaving the client-facing rule description.
func invalidQueryMessage(err error) string {
	message := err.Error()
	return strings.TrimSuffix(message, ": "+names.ErrInvalidQuery.Error())
}

func jsonOperation(summary string, statuses ...int) func(op *huma.Operation) {
	return func(op *huma.Operation) {
		if summary != "" {
			op.Summary = summary
		}
		if op.Responses == nil {
			op.Responses = map[string]*huma.Response{}
		}

		statusCodes := append([]int{stdhttp.StatusOK}, statuses...)
		for _, status := range statusCodes {
			code := strconv.Itoa(status)
			op.Responses[code] = &huma.Response{
				Description: stdhttp.StatusText(status),
				Content: map[string]*huma.MediaType{
					jsonContentType: {
						Schema: &huma.Schema{Type: "object"},
					},
				},
			}
		}
	}
}
