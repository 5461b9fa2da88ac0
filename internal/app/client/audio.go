package client

import (
	"context"
	"fmt"

	"noisemap/internal/domain/marker"
)

// AttachAudio загружает запись и сохраняет на сервере громкость и статус.
// amplitude - максимальная амплитуда записи, из нее считаются децибелы.
func AttachAudio(ctx context.Context, sc SyncChannel, m marker.Marker, amplitude int, data []byte) (marker.Marker, error) {
	if err := sc.UploadAudio(ctx, m.ID, data); err != nil {
		return m, fmt.Errorf("ошибка привязки записи: %w", err)
	}

	m.AttachAudio(marker.Decibels(amplitude))
	if err := sc.UpdateMarker(ctx, m); err != nil {
		return m, fmt.Errorf("ошибка привязки записи: %w", err)
	}

	return m, nil
}

// DetachAudio сбрасывает громкость, статус записи и тип маркера.
func DetachAudio(ctx context.Context, sc SyncChannel, m marker.Marker) (marker.Marker, error) {
	m.DetachAudio()
	if err := sc.UpdateMarker(ctx, m); err != nil {
		return m, fmt.Errorf("ошибка отвязки записи: %w", err)
	}
	return m, nil
}
