// LensAtlas - Photo Archive Metadata Ingestion and Analytics
// Copyright 2026 LensAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lensatlas/lensatlas

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

// maxRequestBody bounds JSON request bodies. Trigger and override payloads
// are tiny; anything larger is rejected.
const maxRequestBody = 64 * 1024

// IngestStartRequest is the optional body of POST /api/v1/ingest/start.
// Every field is optional; unset fields fall back to stored overrides, then
// static configuration.
type IngestStartRequest struct {
	TakeoutPath string `json:"takeout_path" validate:"omitempty,min=1,max=4096"`
	BatchID     string `json:"batch_id" validate:"omitempty,min=1,max=128"`
	Limit       *int   `json:"limit" validate:"omitempty,min=-1"`
	Reprocess   *bool  `json:"reprocess"`
}

// OverridesRequest is the body of PUT /api/v1/ingest/config.
type OverridesRequest struct {
	TakeoutPath string `json:"takeout_path" validate:"omitempty,min=1,max=4096"`
	Limit       *int   `json:"limit" validate:"omitempty,min=-1"`
	Reprocess   *bool  `json:"reprocess"`
}

// decodeJSON decodes and validates a JSON request body into dst. An empty
// body is allowed when allowEmpty is set; dst is left zero-valued.
func decodeJSON(w http.ResponseWriter, r *http.Request, validate *validator.Validate, dst interface{}, allowEmpty bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("validation failed: %v", fields)
		}
		return err
	}
	return nil
}
