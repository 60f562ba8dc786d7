package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"navarch/core"
)

type geometryPayload struct {
	Stations   []core.Station   `json:"stations" validate:"required,min=2"`
	Waterlines []core.Waterline `json:"waterlines" validate:"required,min=2"`
	Offsets    []core.Offset    `json:"offsets" validate:"required,min=4"`
}

type geometryResponse struct {
	VesselID   string           `json:"vessel_id"`
	Stations   []core.Station   `json:"stations"`
	Waterlines []core.Waterline `json:"waterlines"`
	Offsets    []core.Offset    `json:"offsets"`
}

// getGeometry godoc
//
//	@Summary		Get geometry
//	@Description	Returns the vessel's complete offset table
//	@Tags			geometry
//	@Produce		json
//	@Param			id	path		string	true	"Vessel ID"
//	@Success		200	{object}	geometryResponse
//	@Failure		404	{object}	map[string]string
//	@Router			/api/vessels/{id}/geometry [get]
func (a *API) getGeometry(w http.ResponseWriter, r *http.Request) {
	vesselID := mux.Vars(r)["id"]
	geom, err := a.store.GetGeometry(r.Context(), vesselID)
	if err != nil {
		a.respondError(w, err)
		return
	}

	resp := geometryResponse{
		VesselID:   vesselID,
		Stations:   geom.Stations,
		Waterlines: geom.Waterlines,
	}
	for si, st := range geom.Stations {
		for wi, wl := range geom.Waterlines {
			resp.Offsets = append(resp.Offsets, core.Offset{
				StationIndex:   st.Index,
				WaterlineIndex: wl.Index,
				HalfBreadth:    geom.HalfBreadth(si, wi),
			})
		}
	}
	a.respondJSON(w, resp, http.StatusOK)
}

// putGeometry godoc
//
//	@Summary		Replace geometry
//	@Description	Atomically replaces the complete offset table and bumps the geometry revision
//	@Tags			geometry
//	@Accept			json
//	@Param			id			path	string			true	"Vessel ID"
//	@Param			geometry	body	geometryPayload	true	"Offset table"
//	@Success		204
//	@Failure		422	{object}	map[string]string
//	@Router			/api/vessels/{id}/geometry [put]
func (a *API) putGeometry(w http.ResponseWriter, r *http.Request) {
	var req geometryPayload
	if err := a.decodeJSON(r, &req); err != nil {
		a.respondError(w, err)
		return
	}

	id := mux.Vars(r)["id"]
	if err := a.store.ReplaceGeometry(r.Context(), id, req.Stations, req.Waterlines, req.Offsets); err != nil {
		a.respondError(w, err)
		return
	}
	a.svc.InvalidateVessel(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

// deleteGeometry godoc
//
//	@Summary		Delete geometry
//	@Tags			geometry
//	@Param			id	path	string	true	"Vessel ID"
//	@Success		204
//	@Router			/api/vessels/{id}/geometry [delete]
func (a *API) deleteGeometry(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := a.store.DeleteGeometry(r.Context(), id); err != nil {
		a.respondError(w, err)
		return
	}
	a.svc.InvalidateVessel(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}
