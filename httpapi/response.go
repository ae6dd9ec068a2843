package httpapi

//OKResponse acknowledges a successful change
type OKResponse struct {
	OK bool `json:"ok"`
}

var okResponse = &OKResponse{OK: true}
