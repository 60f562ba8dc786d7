package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"navarch/core"
)

type loadcaseRequest struct {
	Name string   `json:"name" validate:"required,max=200"`
	Rho  float64  `json:"rho" validate:"required,gt=0,lte=2"`
	KG   *float64 `json:"kg,omitempty" validate:"omitempty,gte=0"`
	LCG  *float64 `json:"lcg,omitempty"`
	TCG  *float64 `json:"tcg,omitempty"`
}

// getLoadcases godoc
//
//	@Summary		List loadcases
//	@Tags			loadcases
//	@Produce		json
//	@Param			id	path		string	true	"Vessel ID"
//	@Success		200	{array}		core.Loadcase
//	@Router			/api/vessels/{id}/loadcases [get]
func (a *API) getLoadcases(w http.ResponseWriter, r *http.Request) {
	loadcases, err := a.store.GetLoadcases(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		a.respondError(w, err)
		return
	}
	if loadcases == nil {
		loadcases = []core.Loadcase{}
	}
	a.respondJSON(w, loadcases, http.StatusOK)
}

// createLoadcase godoc
//
//	@Summary		Create loadcase
//	@Tags			loadcases
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string			true	"Vessel ID"
//	@Param			loadcase	body		loadcaseRequest	true	"Loadcase"
//	@Success		201	{object}	core.Loadcase
//	@Router			/api/vessels/{id}/loadcases [post]
func (a *API) createLoadcase(w http.ResponseWriter, r *http.Request) {
	var req loadcaseRequest
	if err := a.decodeJSON(r, &req); err != nil {
		a.respondError(w, err)
		return
	}

	lc := &core.Loadcase{
		ID:       uuid.New().String(),
		VesselID: mux.Vars(r)["id"],
		Name:     req.Name,
		Rho:      req.Rho,
		KG:       req.KG,
		LCG:      req.LCG,
		TCG:      req.TCG,
	}
	if err := a.store.CreateLoadcase(r.Context(), lc); err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, lc, http.StatusCreated)
}

// getLoadcase godoc
//
//	@Summary		Get loadcase
//	@Tags			loadcases
//	@Produce		json
//	@Param			id	path		string	true	"Loadcase ID"
//	@Success		200	{object}	core.Loadcase
//	@Failure		404	{object}	map[string]string
//	@Router			/api/loadcases/{id} [get]
func (a *API) getLoadcase(w http.ResponseWriter, r *http.Request) {
	lc, err := a.store.GetLoadcase(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, lc, http.StatusOK)
}

// updateLoadcase godoc
//
//	@Summary		Update loadcase
//	@Tags			loadcases
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string			true	"Loadcase ID"
//	@Param			loadcase	body		loadcaseRequest	true	"Loadcase"
//	@Success		200	{object}	core.Loadcase
//	@Router			/api/loadcases/{id} [put]
func (a *API) updateLoadcase(w http.ResponseWriter, r *http.Request) {
	var req loadcaseRequest
	if err := a.decodeJSON(r, &req); err != nil {
		a.respondError(w, err)
		return
	}

	lc := &core.Loadcase{
		Name: req.Name,
		Rho:  req.Rho,
		KG:   req.KG,
		LCG:  req.LCG,
		TCG:  req.TCG,
	}
	if err := a.store.UpdateLoadcase(r.Context(), mux.Vars(r)["id"], lc); err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, lc, http.StatusOK)
}

// deleteLoadcase godoc
//
//	@Summary		Delete loadcase
//	@Tags			loadcases
//	@Param			id	path	string	true	"Loadcase ID"
//	@Success		204
//	@Router			/api/loadcases/{id} [delete]
func (a *API) deleteLoadcase(w http.ResponseWriter, r *http.Request) {
	if err := a.store.DeleteLoadcase(r.Context(), mux.Vars(r)["id"]); err != nil {
		a.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
