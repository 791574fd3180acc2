package attendance

type NormalizeResponse struct {
	Shape Shape `json:"shape"`
	Days  []Day `json:"days"`
	Count int   `json:"count"`
}
