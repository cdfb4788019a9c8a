package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"
	helper "github.com/lintang-b-s/routeannotator/pkg/http/router/routerhelper"
	"github.com/paulmach/orb"
	"github.com/twpayne/go-polyline"
	"go.uber.org/zap"
)

type annotationAPI struct {
	annotationService AnnotationService
	speedService      SpeedService
	log               *zap.Logger
	validator         *validator.Validate
	trans             ut.Translator
}

func New(annotationService AnnotationService, speedService SpeedService, log *zap.Logger) *annotationAPI {
	validate, trans := newValidator()
	return &annotationAPI{
		annotationService: annotationService,
		speedService:      speedService,
		log:               log,
		validator:         validate,
		trans:             trans,
	}
}

func (api *annotationAPI) Routes(group *helper.RouteGroup) {
	group.GET("/nodelist/:nodelist", api.annotateNodeList)
	group.GET("/coordlist/:coordlist", api.annotateCoordList)
	group.GET("/polyline/:polyline", api.annotatePolyline)
	group.GET("/ways/:wayid/tags", api.wayTags)
	group.GET("/status", api.status)
	if api.speedService != nil {
		group.GET("/speeds/:nodelist", api.routeSpeeds)
		group.GET("/wayspeeds/:waylist", api.waySpeeds)
	}
}

func (api *annotationAPI) annotateNodeList(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request nodeListRequest
		err     error
	)
	request.NodeIDs, err = parseIDList(p.ByName("nodelist"))
	if err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := api.validate(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	route, err := api.annotationService.AnnotateNodes(request.NodeIDs)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	var geometry string
	if withGeometry, _ := strconv.ParseBool(r.URL.Query().Get("geometry")); withGeometry {
		geometry, err = api.annotationService.NodeGeometry(request.NodeIDs)
		if err != nil {
			api.getStatusCode(w, r, err)
			return
		}
	}

	if err := api.writeJSON(w, http.StatusOK, NewAnnotationResponse(route, geometry), nil); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *annotationAPI) annotateCoordList(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request coordListRequest
		err     error
	)
	request.Coordinates, err = parseCoordList(p.ByName("coordlist"))
	if err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	api.annotateCoordinates(w, r, request)
}

// annotatePolyline accepts an encoded polyline of precision 5, lat/lon order.
func (api *annotationAPI) annotatePolyline(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	coords, _, err := polyline.DecodeCoords([]byte(p.ByName("polyline")))
	if err != nil {
		api.BadRequestResponse(w, r, fmt.Errorf("invalid polyline: %w", err))
		return
	}
	points := make([]orb.Point, len(coords))
	for i, c := range coords {
		points[i] = orb.Point{c[1], c[0]}
	}
	api.annotateCoordinates(w, r, coordListRequest{Coordinates: fromPoints(points)})
}

func (api *annotationAPI) annotateCoordinates(w http.ResponseWriter, r *http.Request, request coordListRequest) {
	if err := api.validate(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	route, err := api.annotationService.AnnotateCoordinates(request.points())
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, NewAnnotationResponse(route, ""), nil); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *annotationAPI) wayTags(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	wayID, err := strconv.ParseUint(p.ByName("wayid"), 10, 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("way id must be a non-negative integer"))
		return
	}

	tags, err := api.annotationService.WayTags(wayID)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"tags": tags}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *annotationAPI) status(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	stats, loaded := api.annotationService.Ready()
	status := http.StatusOK
	if !loaded {
		status = http.StatusServiceUnavailable
	}
	if err := api.writeJSON(w, status, statusResponse{Loaded: loaded, Stats: stats}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *annotationAPI) routeSpeeds(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request nodeListRequest
		err     error
	)
	request.NodeIDs, err = parseIDList(p.ByName("nodelist"))
	if err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := api.validate(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	speeds, err := api.speedService.RouteSpeeds(request.NodeIDs)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, speedsResponse{Speeds: speeds}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *annotationAPI) waySpeeds(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request wayListRequest
		err     error
	)
	request.WayIDs, err = parseIDList(p.ByName("waylist"))
	if err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := api.validate(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	speeds, err := api.speedService.WaySpeeds(request.WayIDs)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, speedsResponse{Speeds: speeds}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}
