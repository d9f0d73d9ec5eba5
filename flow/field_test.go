package flow

import "testing"

func floatPtr(v float64) *float64 { return &v }

func TestFieldSpecValidate(t *testing.T) {
	tests := []struct {
		name  string
		field FieldSpec
		value interface{}
		want  string
	}{
		{
			name:  "required missing",
			field: FieldSpec{Key: "reason", Required: true},
			value: nil,
			want:  "is required",
		},
		{
			name:  "required whitespace only",
			field: FieldSpec{Key: "reason", Required: true},
			value: "   ",
			want:  "is required",
		},
		{
			name:  "optional missing",
			field: FieldSpec{Key: "notes"},
			value: nil,
			want:  "",
		},
		{
			name:  "pattern match",
			field: FieldSpec{Key: "postcode", Pattern: `\d{4}`},
			value: "3000",
			want:  "",
		},
		{
			name:  "pattern mismatch",
			field: FieldSpec{Key: "postcode", Pattern: `\d{4}`},
			value: "30A0",
			want:  "has an invalid format",
		},
		{
			name:  "pattern anchored to the full value",
			field: FieldSpec{Key: "postcode", Pattern: `\d{4}`},
			value: "x3000x",
			want:  "has an invalid format",
		},
		{
			name:  "numeric below min",
			field: FieldSpec{Key: "days", Min: floatPtr(1)},
			value: float64(0),
			want:  "must be at least 1",
		},
		{
			name:  "numeric above max",
			field: FieldSpec{Key: "days", Max: floatPtr(14)},
			value: float64(30),
			want:  "must be at most 14",
		},
		{
			name:  "numeric in bounds",
			field: FieldSpec{Key: "days", Min: floatPtr(1), Max: floatPtr(14)},
			value: float64(3),
			want:  "",
		},
		{
			name:  "string length below min",
			field: FieldSpec{Key: "reason", Min: floatPtr(10)},
			value: "short",
			want:  "must be at least 10 characters",
		},
		{
			name:  "string length above max",
			field: FieldSpec{Key: "reason", Max: floatPtr(5)},
			value: "much too long",
			want:  "must be at most 5 characters",
		},
		{
			name:  "enum allowed",
			field: FieldSpec{Key: "duration", Enum: []string{"1", "2", "3"}},
			value: "2",
			want:  "",
		},
		{
			name:  "enum rejected",
			field: FieldSpec{Key: "duration", Enum: []string{"1", "2", "3"}},
			value: "7",
			want:  "is not one of the allowed values",
		},
		{
			name:  "enum over list value all allowed",
			field: FieldSpec{Key: "test_types", Enum: []string{"blood", "xray"}},
			value: []interface{}{"blood", "xray"},
			want:  "",
		},
		{
			name:  "enum over list value one rejected",
			field: FieldSpec{Key: "test_types", Enum: []string{"blood", "xray"}},
			value: []interface{}{"blood", "mri"},
			want:  "contains a value that is not allowed",
		},
		{
			name:  "empty list counts as missing",
			field: FieldSpec{Key: "test_types", Required: true},
			value: []interface{}{},
			want:  "is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.field.Validate(tt.value); got != tt.want {
				t.Errorf("Validate(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestValidateStep(t *testing.T) {
	step := Step{
		ID: "details",
		Fields: []FieldSpec{
			{Key: "reason", Required: true},
			{Key: "days", Min: floatPtr(1), Max: floatPtr(14)},
		},
	}

	errs := ValidateStep(step, map[string]interface{}{"days": float64(30)})
	if len(errs) != 2 {
		t.Fatalf("len(errs) = %d, want 2", len(errs))
	}
	if errs["reason"] != "is required" {
		t.Errorf("errs[reason] = %q, want %q", errs["reason"], "is required")
	}

	errs = ValidateStep(step, map[string]interface{}{"reason": "flu", "days": float64(3)})
	if len(errs) != 0 {
		t.Errorf("errs = %v, want empty", errs)
	}
}

func TestIsAffirmative(t *testing.T) {
	tests := []struct {
		value interface{}
		want  bool
	}{
		{true, true},
		{false, false},
		{"yes", true},
		{"Yes ", true},
		{"true", true},
		{"no", false},
		{nil, false},
		{float64(1), false},
	}

	for _, tt := range tests {
		if got := IsAffirmative(tt.value); got != tt.want {
			t.Errorf("IsAffirmative(%v) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
