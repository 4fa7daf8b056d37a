package dto

type CreateFlagRequest struct {
	ContentType string `json:"content_type"`
	ContentID   string `json:"content_id"`
	Reason      string `json:"reason"`
}

type ActionFlagRequest struct {
	Status    string `json:"status"`
	AdminNote string `json:"admin_note"`
}

type SetSettingRequest struct {
	Value string `json:"value"`
	Type  string `json:"type"`
}
