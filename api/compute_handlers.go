package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"navarch/core"
)

type tableRequest struct {
	LoadcaseID string    `json:"loadcase_id,omitempty"`
	Drafts     []float64 `json:"drafts" validate:"required,min=1"`
}

type curvesRequest struct {
	LoadcaseID string           `json:"loadcase_id,omitempty"`
	Types      []core.CurveType `json:"types" validate:"required,min=1"`
	MinDraft   float64          `json:"min_draft" validate:"gte=0"`
	MaxDraft   float64          `json:"max_draft" validate:"gt=0"`
	Points     int              `json:"points" validate:"gte=2"`
}

type criteriaResponse struct {
	Result *core.StabilityCriteriaResult `json:"result"`
	Curve  *core.StabilityCurve          `json:"curve"`
}

// parseFloat reads a float query parameter, with def when absent.
func parseFloat(r *http.Request, name string, def float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, core.NewInvalidArgument(name, "not a number")
	}
	return v, nil
}

// computeHydrostatics godoc
//
//	@Summary		Compute hydrostatics
//	@Description	Computes the full hydrostatic state at one draft and trim
//	@Tags			compute
//	@Produce		json
//	@Param			id			path	string	true	"Vessel ID"
//	@Param			draft		query	number	true	"Draft at midships, m"
//	@Param			trim		query	number	false	"Trim angle, degrees"	default(0)
//	@Param			loadcase_id	query	string	false	"Loadcase for GM computation"
//	@Success		200	{object}	core.HydroResult
//	@Failure		404	{object}	map[string]string
//	@Failure		422	{object}	map[string]string
//	@Router			/api/vessels/{id}/hydrostatics [get]
func (a *API) computeHydrostatics(w http.ResponseWriter, r *http.Request) {
	draft, err := parseFloat(r, "draft", -1)
	if err != nil {
		a.respondError(w, err)
		return
	}
	if draft < 0 {
		a.respondError(w, core.NewInvalidArgument("draft", "required and must be >= 0"))
		return
	}
	trim, err := parseFloat(r, "trim", 0)
	if err != nil {
		a.respondError(w, err)
		return
	}

	res, err := a.svc.ComputeHydrostatics(r.Context(), mux.Vars(r)["id"], r.URL.Query().Get("loadcase_id"), draft, trim)
	if err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, core.RoundHydroResult(res), http.StatusOK)
}

// computeTable godoc
//
//	@Summary		Compute hydrostatic table
//	@Description	Computes hydrostatics over a list of drafts
//	@Tags			compute
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Vessel ID"
//	@Param			request	body		tableRequest	true	"Draft grid"
//	@Success		200	{array}		core.HydroResult
//	@Router			/api/vessels/{id}/hydrostatics/table [post]
func (a *API) computeTable(w http.ResponseWriter, r *http.Request) {
	var req tableRequest
	if err := a.decodeJSON(r, &req); err != nil {
		a.respondError(w, err)
		return
	}

	results, err := a.svc.ComputeTable(r.Context(), mux.Vars(r)["id"], req.LoadcaseID, req.Drafts)
	if err != nil {
		a.respondError(w, err)
		return
	}
	for i, res := range results {
		results[i] = core.RoundHydroResult(res)
	}
	a.respondJSON(w, results, http.StatusOK)
}

// generateCurves godoc
//
//	@Summary		Generate hydrostatic curves
//	@Description	Samples the requested property curves over a draft range
//	@Tags			compute
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Vessel ID"
//	@Param			request	body		curvesRequest	true	"Curve request"
//	@Success		200	{object}	map[string]core.CurveData
//	@Router			/api/vessels/{id}/curves [post]
func (a *API) generateCurves(w http.ResponseWriter, r *http.Request) {
	var req curvesRequest
	if err := a.decodeJSON(r, &req); err != nil {
		a.respondError(w, err)
		return
	}

	out, err := a.svc.GenerateCurves(r.Context(), mux.Vars(r)["id"], req.LoadcaseID, req.Types, req.MinDraft, req.MaxDraft, req.Points)
	if err != nil {
		a.respondError(w, err)
		return
	}
	rounded := make(map[core.CurveType]*core.CurveData, len(out))
	for typ, c := range out {
		rounded[typ] = core.RoundCurve(c)
	}
	a.respondJSON(w, rounded, http.StatusOK)
}

// generateBonjean godoc
//
//	@Summary		Generate Bonjean curves
//	@Description	Returns sectional area vs draft for every station
//	@Tags			compute
//	@Produce		json
//	@Param			id	path		string	true	"Vessel ID"
//	@Success		200	{array}		core.BonjeanCurve
//	@Router			/api/vessels/{id}/curves/bonjean [get]
func (a *API) generateBonjean(w http.ResponseWriter, r *http.Request) {
	curves, err := a.svc.GenerateBonjean(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		a.respondError(w, err)
		return
	}
	for i := range curves {
		for j := range curves[i].Points {
			curves[i].Points[j].X = core.Round(curves[i].Points[j].X)
			curves[i].Points[j].Y = core.Round(curves[i].Points[j].Y)
		}
	}
	a.respondJSON(w, curves, http.StatusOK)
}

// computeGZ godoc
//
//	@Summary		Compute GZ curve
//	@Description	Computes a righting-arm curve over a heel angle range
//	@Tags			stability
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Vessel ID"
//	@Param			request	body		core.GZRequest	true	"GZ request"
//	@Success		200	{object}	core.StabilityCurve
//	@Failure		400	{object}	map[string]string
//	@Router			/api/vessels/{id}/stability/gz [post]
func (a *API) computeGZ(w http.ResponseWriter, r *http.Request) {
	var req core.GZRequest
	if err := a.decodeJSON(r, &req); err != nil {
		a.respondError(w, err)
		return
	}

	curve, err := a.svc.ComputeGZCurve(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, core.RoundStabilityCurve(curve), http.StatusOK)
}

// checkCriteria godoc
//
//	@Summary		Check stability criteria
//	@Description	Computes a GZ curve and evaluates the intact stability criteria against it
//	@Tags			stability
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Vessel ID"
//	@Param			request	body		core.GZRequest	true	"GZ request"
//	@Success		200	{object}	criteriaResponse
//	@Router			/api/vessels/{id}/stability/criteria [post]
func (a *API) checkCriteria(w http.ResponseWriter, r *http.Request) {
	var req core.GZRequest
	if err := a.decodeJSON(r, &req); err != nil {
		a.respondError(w, err)
		return
	}

	result, curve, err := a.svc.CheckCriteria(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		a.respondError(w, err)
		return
	}
	for i := range result.Criteria {
		result.Criteria[i].Actual = core.Round(result.Criteria[i].Actual)
	}
	a.respondJSON(w, criteriaResponse{Result: result, Curve: core.RoundStabilityCurve(curve)}, http.StatusOK)
}
