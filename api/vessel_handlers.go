package api

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"navarch/core"
)

type vesselRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

type vesselListResponse struct {
	Vessels []core.Vessel `json:"vessels"`
	Total   int64         `json:"total"`
}

// getVessels godoc
//
//	@Summary		List vessels
//	@Description	Returns a page of vessels
//	@Tags			vessels
//	@Produce		json
//	@Param			limit	query	int	false	"Maximum number of results (1-500)"	default(50)
//	@Param			offset	query	int	false	"Offset into the result set"	default(0)
//	@Success		200	{object}	vesselListResponse
//	@Router			/api/vessels [get]
func (a *API) getVessels(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}
	offset := 0
	if o := r.URL.Query().Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}

	vessels, err := a.store.GetVessels(r.Context(), limit, offset)
	if err != nil {
		a.respondError(w, err)
		return
	}
	total, err := a.store.GetVesselCount(r.Context())
	if err != nil {
		a.respondError(w, err)
		return
	}
	if vessels == nil {
		vessels = []core.Vessel{}
	}
	a.respondJSON(w, vesselListResponse{Vessels: vessels, Total: total}, http.StatusOK)
}

// createVessel godoc
//
//	@Summary		Create vessel
//	@Tags			vessels
//	@Accept			json
//	@Produce		json
//	@Param			vessel	body		vesselRequest	true	"Vessel"
//	@Success		201	{object}	core.Vessel
//	@Failure		400	{object}	map[string]string
//	@Router			/api/vessels [post]
func (a *API) createVessel(w http.ResponseWriter, r *http.Request) {
	var req vesselRequest
	if err := a.decodeJSON(r, &req); err != nil {
		a.respondError(w, err)
		return
	}

	vessel := &core.Vessel{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
	}
	if err := a.store.CreateVessel(r.Context(), vessel); err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, vessel, http.StatusCreated)
}

// getVessel godoc
//
//	@Summary		Get vessel
//	@Tags			vessels
//	@Produce		json
//	@Param			id	path		string	true	"Vessel ID"
//	@Success		200	{object}	core.Vessel
//	@Failure		404	{object}	map[string]string
//	@Router			/api/vessels/{id} [get]
func (a *API) getVessel(w http.ResponseWriter, r *http.Request) {
	vessel, err := a.store.GetVessel(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, vessel, http.StatusOK)
}

// updateVessel godoc
//
//	@Summary		Update vessel
//	@Tags			vessels
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Vessel ID"
//	@Param			vessel	body		vesselRequest	true	"Vessel"
//	@Success		200	{object}	core.Vessel
//	@Router			/api/vessels/{id} [put]
func (a *API) updateVessel(w http.ResponseWriter, r *http.Request) {
	var req vesselRequest
	if err := a.decodeJSON(r, &req); err != nil {
		a.respondError(w, err)
		return
	}

	vessel := &core.Vessel{Name: req.Name, Description: req.Description}
	if err := a.store.UpdateVessel(r.Context(), mux.Vars(r)["id"], vessel); err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, vessel, http.StatusOK)
}

// deleteVessel godoc
//
//	@Summary		Delete vessel
//	@Description	Removes a vessel with its geometry and loadcases
//	@Tags			vessels
//	@Param			id	path	string	true	"Vessel ID"
//	@Success		204
//	@Router			/api/vessels/{id} [delete]
func (a *API) deleteVessel(w http.ResponseWriter, r *http.Request) {
	if err := a.store.DeleteVessel(r.Context(), mux.Vars(r)["id"]); err != nil {
		a.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
