package service

import (
	"context"
	"fmt"

	"cropdash/internal/models"
)

// IngestSensorData validates a reading and stores it, creating the
// readings bucket on first use.
func (s *DashboardService) IngestSensorData(ctx context.Context, data models.SensorData) error {
	_, err := s.IngestBatch(ctx, []models.SensorData{data})
	return err
}

// IngestBatch validates every reading before writing any. It returns how
// many were written, which is short of len(batch) only when a write fails.
func (s *DashboardService) IngestBatch(ctx context.Context, batch []models.SensorData) (int, error) {
	for i, data := range batch {
		if verr := validateSensorData(data); verr != nil {
			if len(batch) > 1 {
				verr.Field = fmt.Sprintf("[%d].%s", i, verr.Field)
			}
			return 0, verr
		}
	}
	if len(batch) == 0 {
		return 0, nil
	}
	if err := s.ensureBucket(ctx); err != nil {
		return 0, err
	}
	for i, data := range batch {
		if err := s.repo.WriteSensorData(ctx, data); err != nil {
			return i, fmt.Errorf("reading %d of %d: %w", i+1, len(batch), err)
		}
	}
	return len(batch), nil
}

func validateSensorData(data models.SensorData) *models.ValidationError {
	if data.SensorKey() == "" {
		return models.NewValidationError("sensor_id", "sensor_id or device_id is required")
	}
	if data.Field == "" {
		return models.NewValidationError("field", "field is required")
	}
	return nil
}

func (s *DashboardService) ensureBucket(ctx context.Context) error {
	bucket := s.repo.Bucket()
	exists, err := s.repo.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket %q: %w", bucket, err)
	}
	if exists {
		return nil
	}
	s.logger.Info().Str("bucket", bucket).Msg("bucket does not exist, creating it")
	if err := s.repo.CreateBucket(ctx, bucket); err != nil {
		return fmt.Errorf("error creating bucket %q: %w", bucket, err)
	}
	return nil
}
