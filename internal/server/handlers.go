package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	goahttp "goa.design/goa/v3/http"

	"leadforms/internal/logging"
	apperrors "leadforms/pkg/errors"
)

// Fixed response bodies. Failures never carry detail to the client.
const (
	submitSuccessMessage = "Form submitted successfully"
	submitErrorMessage   = "Error submitting form"
	listErrorMessage     = "Failed to fetch leads"
)

type messageBody struct {
	Message string `json:"message"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := jsonContext(r)
	res, err := s.health.Check(ctx)
	if err != nil {
		// Check never fails; answer anyway
		log.Printf("[ERROR] health check: %v", err)
	}
	encode(ctx, w, http.StatusOK, res)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := jsonContext(r)

	payload, err := decodePayload(w, r)
	if err != nil {
		log.Printf("[LEADS] Submit failed: request_id=%s, decode error: %v", logging.RequestID(ctx), err)
		encode(ctx, w, http.StatusInternalServerError, messageBody{Message: submitErrorMessage})
		return
	}

	// the service logs the failure detail
	if _, err := s.leads.Submit(ctx, payload); err != nil {
		encode(ctx, w, http.StatusInternalServerError, messageBody{Message: submitErrorMessage})
		return
	}

	encode(ctx, w, http.StatusOK, messageBody{Message: submitSuccessMessage})
}

func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	ctx := jsonContext(r)

	leads, err := s.leads.List(ctx)
	if err != nil {
		encode(ctx, w, http.StatusInternalServerError, errorBody{Error: listErrorMessage})
		return
	}

	encode(ctx, w, http.StatusOK, leads)
}

// decodePayload reads the body as a JSON object of arbitrary shape. Numbers are
// kept as json.Number so they convert to strings without float formatting.
func decodePayload(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := goahttp.RequestDecoder(r)
	if jd, ok := dec.(*json.Decoder); ok {
		jd.UseNumber()
	}

	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeBadRequest, "malformed request body", err)
	}
	return payload, nil
}

// jsonContext pins response negotiation to JSON whatever the client's Accept header says
func jsonContext(r *http.Request) context.Context {
	return context.WithValue(r.Context(), goahttp.AcceptTypeKey, "application/json")
}

// encode writes v with status using the goa response encoder
func encode(ctx context.Context, w http.ResponseWriter, status int, v any) {
	enc := goahttp.ResponseEncoder(ctx, w)
	w.WriteHeader(status)
	if err := enc.Encode(v); err != nil {
		log.Printf("[ERROR] failed to encode response: %v", err)
	}
}
