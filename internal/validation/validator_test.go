// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

package validation

import (
	"strings"
	"testing"
)

type batchRequestFixture struct {
	ModelKey string `validate:"omitempty,model_key"`
	Limit    int    `validate:"gte=0,lte=1000"`
}

type requiredFixture struct {
	Name string `validate:"required,min=3"`
}

func TestValidateStruct_Passes(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
	}{
		{"known model key", &batchRequestFixture{ModelKey: "cellular", Limit: 10}},
		{"empty model key allowed", &batchRequestFixture{Limit: 0}},
		{"required present", &requiredFixture{Name: "HRG"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateStruct(tt.in); err != nil {
				t.Errorf("ValidateStruct() = %v, want nil", err)
			}
		})
	}
}

func TestValidateStruct_ModelKeyRejected(t *testing.T) {
	err := ValidateStruct(&batchRequestFixture{ModelKey: "random_forest"})
	if err == nil {
		t.Fatal("expected validation error for unknown model key")
	}
	if got := err.Error(); !strings.Contains(got, "not a known model key") {
		t.Errorf("unexpected message: %q", got)
	}

	errs := err.Errors()
	if len(errs) != 1 {
		t.Fatalf("expected 1 field error, got %d", len(errs))
	}
	if errs[0].Field() != "ModelKey" || errs[0].Tag() != "model_key" {
		t.Errorf("unexpected field error: field=%s tag=%s", errs[0].Field(), errs[0].Tag())
	}
}

func TestValidateStruct_AggregatesMessages(t *testing.T) {
	err := ValidateStruct(&batchRequestFixture{ModelKey: "nope", Limit: 5000})
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "ModelKey") || !strings.Contains(msg, "Limit") {
		t.Errorf("expected both fields in message, got %q", msg)
	}
	if !strings.Contains(msg, "; ") {
		t.Errorf("expected messages joined with semicolons, got %q", msg)
	}
}

func TestValidateStruct_RequiredAndMin(t *testing.T) {
	if err := ValidateStruct(&requiredFixture{}); err == nil {
		t.Error("expected error for missing required field")
	} else if !strings.Contains(err.Error(), "required") {
		t.Errorf("unexpected message: %q", err.Error())
	}

	if err := ValidateStruct(&requiredFixture{Name: "ab"}); err == nil {
		t.Error("expected error for short field")
	} else if !strings.Contains(err.Error(), "at least 3 characters") {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestGetValidator_Singleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("expected the same validator instance on repeated calls")
	}
}
