package httpapi

import (
	"commandcenter/internal/domain"
)

type modeReq struct {
	Mode string `json:"mode"`
}

type modeResp struct {
	Mode domain.SystemMode `json:"mode"`
}

type dispatchReq struct {
	Confirmed bool              `json:"confirmed"`
	Typed     string            `json:"typed"`
	Form      map[string]string `json:"form"`
}

type selectToolReq struct {
	Tool string `json:"tool"`
}

type filtersReq struct {
	Tool    string            `json:"tool"`
	Filters map[string]string `json:"filters"`
}

type setAPIKeyReq struct {
	APIKey string `json:"apiKey"`
}
