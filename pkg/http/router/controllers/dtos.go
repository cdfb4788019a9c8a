package controllers

import (
	"github.com/lintang-b-s/routeannotator/pkg/datastructure"
	"github.com/lintang-b-s/routeannotator/pkg/http/usecases"
	"github.com/lintang-b-s/routeannotator/pkg/osmparser"
	"github.com/paulmach/orb"
)

type nodeListRequest struct {
	NodeIDs []uint64 `json:"node_ids" validate:"min=2"`
}

type coordinate struct {
	Lon float64 `json:"lon" validate:"min=-180,max=180"`
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
}

type coordListRequest struct {
	Coordinates []coordinate `json:"coordinates" validate:"min=2,dive"`
}

func (r coordListRequest) points() []orb.Point {
	points := make([]orb.Point, len(r.Coordinates))
	for i, c := range r.Coordinates {
		points[i] = orb.Point{c.Lon, c.Lat}
	}
	return points
}

type wayListRequest struct {
	WayIDs []uint64 `json:"way_ids" validate:"min=1"`
}

type annotationResponse struct {
	WayIndexes    datastructure.AnnotatedRoute `json:"way_indexes"`
	WayTags       []map[string]string          `json:"way_tags"`
	TagsetIndexes []int                        `json:"tagset_indexes"`
	Geometry      string                       `json:"geometry,omitempty"`
}

func NewAnnotationResponse(route usecases.AnnotatedRoute, geometry string) annotationResponse {
	return annotationResponse{
		WayIndexes:    route.WayIndexes,
		WayTags:       route.WayTags,
		TagsetIndexes: route.TagsetIndexes,
		Geometry:      geometry,
	}
}

type speedsResponse struct {
	Speeds []uint32 `json:"speeds"`
}

type statusResponse struct {
	Loaded bool                `json:"loaded"`
	Stats  osmparser.LoadStats `json:"stats"`
}

type errorResponse struct {
	Error string `json:"error"`
}
