package reporting

import "time"

// TimeRange bounds a report query. To is exclusive.
type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// CampaignSummaryRequest requests aggregated outcome metrics for a campaign.
// CampaignID may be empty to aggregate across every campaign in the range.
type CampaignSummaryRequest struct {
	CampaignID string    `json:"campaign_id,omitempty"`
	Range      TimeRange `json:"range"`
}

type CampaignSummary struct {
	CampaignID string `json:"campaign_id,omitempty"`

	TotalCalls   int `json:"total_calls"`
	PrimaryCalls int `json:"primary_calls"`
	TransferLegs int `json:"transfer_legs"`

	HumanAnswers   int `json:"human_answers"`
	MachineAnswers int `json:"machine_answers"`
	NoAnswer       int `json:"no_answer"`
	Failed         int `json:"failed"`

	VoicemailsDelivered int `json:"voicemails_delivered"`
	TransfersConnected  int `json:"transfers_connected"`
	Transcribed         int `json:"transcribed"`

	TotalDurationSeconds   int `json:"total_duration_seconds"`
	AverageDurationSeconds int `json:"average_duration_seconds"`

	HumanRate    float64 `json:"human_rate"`
	DeliveryRate float64 `json:"delivery_rate"`
}
