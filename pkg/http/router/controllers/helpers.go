package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/lintang-b-s/routeannotator/pkg/util"
	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

type envelope map[string]any

func (api *annotationAPI) writeJSON(w http.ResponseWriter, status int, data any, headers http.Header) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func (api *annotationAPI) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	if err := api.writeJSON(w, status, errorResponse{Error: message}, nil); err != nil {
		api.log.Error("writing error response failed", zap.String("path", r.URL.Path), zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (api *annotationAPI) BadRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (api *annotationAPI) ServerErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.log.Error("internal server error", zap.String("path", r.URL.Path), zap.Error(err))
	api.errorResponse(w, r, http.StatusInternalServerError, util.MessageInternalServerError)
}

// getStatusCode writes the error response matching the error code of err.
func (api *annotationAPI) getStatusCode(w http.ResponseWriter, r *http.Request, err error) {
	var ierr *util.Error
	if !errors.As(err, &ierr) {
		api.ServerErrorResponse(w, r, err)
		return
	}

	switch ierr.Code() {
	case util.ErrBadParamInput, util.ErrValidation:
		api.errorResponse(w, r, http.StatusBadRequest, ierr.Error())
	case util.ErrNotFound:
		api.errorResponse(w, r, http.StatusNotFound, ierr.Error())
	case util.ErrNotInitialized:
		api.errorResponse(w, r, http.StatusServiceUnavailable, ierr.Error())
	case util.ErrCoordinatesNotSupported:
		api.errorResponse(w, r, http.StatusNotImplemented, ierr.Error())
	default:
		api.ServerErrorResponse(w, r, err)
	}
}

func newValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)
	return validate, trans
}

func translateError(err error, trans ut.Translator) []error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return []error{err}
	}
	errs := make([]error, 0, len(validationErrs))
	for _, e := range validationErrs {
		errs = append(errs, errors.New(e.Translate(trans)))
	}
	return errs
}

func (api *annotationAPI) validate(request any) error {
	if err := api.validator.Struct(request); err != nil {
		vv := translateError(err, api.trans)
		vvString := []string{}
		for _, v := range vv {
			vvString = append(vvString, v.Error())
		}
		return fmt.Errorf("validation error: %v", vvString)
	}
	return nil
}

// parseIDList parses "1,2,3" into ids.
func parseIDList(s string) ([]uint64, error) {
	parts := strings.Split(s, ",")
	ids := make([]uint64, len(parts))
	for i, p := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("id %q at position %d is not a non-negative integer", p, i)
		}
		ids[i] = id
	}
	return ids, nil
}

// parseCoordList parses "lon,lat;lon,lat" into coordinates.
func parseCoordList(s string) ([]coordinate, error) {
	pairs := strings.Split(s, ";")
	coords := make([]coordinate, len(pairs))
	for i, pair := range pairs {
		lonLat := strings.Split(pair, ",")
		if len(lonLat) != 2 {
			return nil, fmt.Errorf("coordinate %q at position %d must be lon,lat", pair, i)
		}
		lon, err := parseFinite(lonLat[0])
		if err != nil {
			return nil, fmt.Errorf("longitude at position %d: %w", i, err)
		}
		lat, err := parseFinite(lonLat[1])
		if err != nil {
			return nil, fmt.Errorf("latitude at position %d: %w", i, err)
		}
		coords[i] = coordinate{Lon: lon, Lat: lat}
	}
	return coords, nil
}

func parseFinite(s string) (float64, error) {
	f, err := util.StringToFloat64(strings.TrimSpace(s))
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return f, nil
}

func fromPoints(points []orb.Point) []coordinate {
	coords := make([]coordinate, len(points))
	for i, p := range points {
		coords[i] = coordinate{Lon: p.Lon(), Lat: p.Lat()}
	}
	return coords
}
