package errors

import "encoding/json"

// ProblemDetails is an RFC 7807 problem document.
type ProblemDetails struct {
	Type     string
	Title    string
	Status   int
	Detail   string
	Instance string

	// Extensions are emitted as top-level members. They never override
	// the standard ones.
	Extensions map[string]interface{}
}

func NewProblemDetails(status int, problemType, title, detail, instance string) *ProblemDetails {
	return &ProblemDetails{Type: problemType, Title: title, Status: status, Detail: detail, Instance: instance}
}

// WithExtension sets one extension member and returns pd.
func (pd *ProblemDetails) WithExtension(key string, value interface{}) *ProblemDetails {
	if pd.Extensions == nil {
		pd.Extensions = map[string]interface{}{}
	}
	pd.Extensions[key] = value
	return pd
}

func (pd *ProblemDetails) MarshalJSON() ([]byte, error) {
	members := make(map[string]interface{}, len(pd.Extensions)+5)
	for k, v := range pd.Extensions {
		members[k] = v
	}
	members["type"] = pd.Type
	members["title"] = pd.Title
	members["status"] = pd.Status
	if pd.Detail == "" {
		delete(members, "detail")
	} else {
		members["detail"] = pd.Detail
	}
	if pd.Instance == "" {
		delete(members, "instance")
	} else {
		members["instance"] = pd.Instance
	}
	return json.Marshal(members)
}
