package tenant

import (
	"encoding/json"
	"errors"
	"io"
)

// createRequest is the normalized shape of a provisioning request.
type createRequest struct {
	TenantID     string
	UserID       string
	BusinessName string
}

// normalizeCreateRequest decodes a create body, accepting both snake_case
// and camelCase field names. Older clients send tenant_id/user_id/
// business_name while newer ones send tenantId/userId/businessName; the
// dual naming is resolved here once so nothing deeper in the module ever
// sees both conventions. Snake case wins when a request carries both. An
// empty body is valid: every field may instead come from ambient context.
func normalizeCreateRequest(body io.Reader) (createRequest, error) {
	var raw struct {
		TenantID     string `json:"tenant_id"`
		TenantIDAlt  string `json:"tenantId"`
		UserID       string `json:"user_id"`
		UserIDAlt    string `json:"userId"`
		BusinessName string `json:"business_name"`
		BusinessAlt  string `json:"businessName"`
	}

	if err := json.NewDecoder(body).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return createRequest{}, err
	}

	return createRequest{
		TenantID:     firstNonEmpty(raw.TenantID, raw.TenantIDAlt),
		UserID:       firstNonEmpty(raw.UserID, raw.UserIDAlt),
		BusinessName: firstNonEmpty(raw.BusinessName, raw.BusinessAlt),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
