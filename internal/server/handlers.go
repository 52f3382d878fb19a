package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Rorical/indexschema/internal/codec"
	"github.com/Rorical/indexschema/internal/engine"
	"github.com/Rorical/indexschema/internal/httpjson"
	"github.com/Rorical/indexschema/internal/logging"
	"github.com/Rorical/indexschema/internal/metrics"
	"github.com/Rorical/indexschema/internal/opensearch"
	"github.com/Rorical/indexschema/internal/schema"
	"github.com/Rorical/indexschema/internal/translate"
	"github.com/Rorical/indexschema/internal/validate"
)

type translateRequest struct {
	Engine  string            `json:"engine"`
	Catalog translate.Catalog `json:"catalog"`
}

type translateResponse struct {
	Index  string          `json:"index"`
	Engine string          `json:"engine"`
	Line   string          `json:"line"`
	Body   json.RawMessage `json:"body"`
}

type validateRequest struct {
	Engine   string          `json:"engine"`
	Index    string          `json:"index"`
	Expected json.RawMessage `json:"expected"`
	Actual   json.RawMessage `json:"actual"`
}

func profileFor(version string) (engine.Version, *engine.Profile, error) {
	v, err := engine.ParseVersion(version)
	if err != nil {
		return engine.Version{}, nil, err
	}
	p, err := engine.ProfileForVersion(v)
	if err != nil {
		return engine.Version{}, nil, err
	}
	return v, p, nil
}

func (a *API) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Catalog.Index == "" {
		httpjson.Error(w, http.StatusBadRequest, "catalog.index is required")
		return
	}
	v, p, err := profileFor(req.Engine)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	ix, err := req.Catalog.Translate(p)
	metrics.ObserveTranslate(time.Since(start))
	if err != nil {
		var te *translate.TranslationError
		if errors.As(err, &te) {
			httpjson.ErrorWith(w, http.StatusBadRequest, err.Error(), map[string]any{"path": te.Path})
			return
		}
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	body, err := ix.MarshalCreateBody(codec.NewDialect(p))
	if err != nil {
		httpjson.Error(w, http.StatusInternalServerError, "encode failed")
		return
	}
	httpjson.Write(w, http.StatusOK, translateResponse{Index: ix.Name, Engine: v.String(), Line: p.Line.String(), Body: body})
}

func (a *API) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Index == "" || len(req.Expected) == 0 || len(req.Actual) == 0 {
		httpjson.Error(w, http.StatusBadRequest, "index, expected and actual are required")
		return
	}
	_, p, err := profileFor(req.Engine)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	d := codec.NewDialect(p)

	expected, err := schema.DecodeCreateBody(req.Index, req.Expected, d)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "expected: "+err.Error())
		return
	}
	actual, err := schema.DecodeCreateBody(req.Index, req.Actual, d)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "actual: "+err.Error())
		return
	}

	rep, err := validate.New(p).Validate(expected, actual)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, validate.ErrMalformedExpected) {
			status = http.StatusBadRequest
		}
		httpjson.Error(w, status, err.Error())
		return
	}
	metrics.ObserveValidation(p.Line.String(), len(rep.Entries))
	httpjson.Write(w, http.StatusOK, rep.Fields())
}

func (a *API) handleCheck(w http.ResponseWriter, r *http.Request) {
	if a.Checker == nil || a.Catalogs == nil {
		httpjson.Error(w, http.StatusServiceUnavailable, "live checks not configured")
		return
	}
	index := chi.URLParam(r, "index")
	cat, ok := a.Catalogs.Get(index)
	if !ok {
		httpjson.Error(w, http.StatusNotFound, "no catalog for index")
		return
	}

	out, err := a.Checker.Check(r.Context(), cat)
	body := map[string]any{
		"index":  index,
		"action": out.Action,
		"cached": out.Cached,
		"report": out.Report.Fields(),
	}
	switch {
	case err == nil:
		httpjson.Write(w, http.StatusOK, body)
	case errors.Is(err, opensearch.ErrRejected):
		httpjson.Write(w, http.StatusConflict, body)
	case errors.Is(err, translate.ErrTranslation):
		logging.FromContext(r.Context()).Error("catalog translation failed", "index", index, "err", err)
		httpjson.Error(w, http.StatusInternalServerError, err.Error())
	default:
		logging.FromContext(r.Context()).Error("live check failed", "index", index, "err", err)
		httpjson.Error(w, http.StatusBadGateway, "live check failed")
	}
}
