package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskProviderGeocode = "providers.geocode"

type ProviderGeocodePayload struct {
	ProviderID string `json:"providerId"`
}

func NewProviderGeocodeTask(payload ProviderGeocodePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskProviderGeocode, data), nil
}

func ParseProviderGeocodePayload(task *asynq.Task) (ProviderGeocodePayload, error) {
	var payload ProviderGeocodePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ProviderGeocodePayload{}, err
	}
	return payload, nil
}
