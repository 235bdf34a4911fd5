package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversionRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     ConversionRequest
		wantErr bool
	}{
		{
			name: "valid",
			req:  ConversionRequest{SourceCode: "print(1)", SourceLang: "python", TargetLang: "go"},
		},
		{
			name:    "missing source code",
			req:     ConversionRequest{SourceLang: "python", TargetLang: "go"},
			wantErr: true,
		},
		{
			name:    "missing source language",
			req:     ConversionRequest{SourceCode: "x", TargetLang: "go"},
			wantErr: true,
		},
		{
			name:    "missing target language",
			req:     ConversionRequest{SourceCode: "x", SourceLang: "go"},
			wantErr: true,
		},
		{
			name:    "whitespace-only source",
			req:     ConversionRequest{SourceCode: " \n\t ", SourceLang: "python", TargetLang: "go"},
			wantErr: true,
		},
		{
			name:    "same languages",
			req:     ConversionRequest{SourceCode: "x", SourceLang: "go", TargetLang: "go"},
			wantErr: true,
		},
		{
			name:    "same languages after normalization",
			req:     ConversionRequest{SourceCode: "x", SourceLang: " Go", TargetLang: "GO "},
			wantErr: true,
		},
		{
			name:    "oversized source",
			req:     ConversionRequest{SourceCode: strings.Repeat("a", MaxSourceBytes+1), SourceLang: "python", TargetLang: "go"},
			wantErr: true,
		},
		{
			name: "unlisted language accepted",
			req:  ConversionRequest{SourceCode: "x", SourceLang: "elixir", TargetLang: "go"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidRequest)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLanguageLabel(t *testing.T) {
	assert.Equal(t, "C++", LanguageLabel("cpp"))
	assert.Equal(t, "PowerShell", LanguageLabel("powershell"))
	assert.Equal(t, "elixir", LanguageLabel("elixir"))
}

func TestLanguages_ReturnsCopy(t *testing.T) {
	langs := Languages()
	require.Len(t, langs, 20)

	langs[0].Label = "mutated"
	assert.Equal(t, "JavaScript", Languages()[0].Label)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.com "))
}

func TestUser_PublicOmitsHash(t *testing.T) {
	u := User{ID: "1", Email: "a@x.com", Name: "A", PasswordHash: "secret-hash"}
	pub := u.Public()

	assert.Equal(t, "1", pub.ID)
	assert.Equal(t, "a@x.com", pub.Email)
	assert.Equal(t, "A", pub.Name)
}
