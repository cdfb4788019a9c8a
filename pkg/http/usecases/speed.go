package usecases

import (
	"go.uber.org/zap"
)

type SpeedService struct {
	log      *zap.Logger
	segments SegmentSpeeds
	ways     WaySpeeds
}

func NewSpeedService(log *zap.Logger, segments SegmentSpeeds, ways WaySpeeds) *SpeedService {
	return &SpeedService{
		log:      log,
		segments: segments,
		ways:     ways,
	}
}

func (ss *SpeedService) RouteSpeeds(nodeIDs []uint64) ([]uint32, error) {
	return ss.segments.GetRouteSpeeds(nodeIDs)
}

func (ss *SpeedService) WaySpeeds(wayIDs []uint64) ([]uint32, error) {
	return ss.ways.GetWaySpeeds(wayIDs)
}
