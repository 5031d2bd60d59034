package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTagName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"uppercase stored as-is", "AB12", "AB12", true},
		{"lowercase uppercased", "ab12", "AB12", true},
		{"single character", "x", "X", true},
		{"non-alphanumeric", "ab!1", "", false},
		{"too long", "ABCDE", "", false},
		{"empty", "", "", false},
		{"whitespace only", "   ", "", false},
		{"trims before checking", " AB ", "AB", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateTagName(tt.input)
			assert.Equal(t, tt.ok, result.Ok())
			if tt.ok {
				assert.Equal(t, tt.want, result.Value)
			}
		})
	}
}

func TestValidateTagName_Idempotent(t *testing.T) {
	once := ValidateTagName("ab12")
	require.True(t, once.Ok())

	twice := ValidateTagName(once.Value)
	require.True(t, twice.Ok())
	assert.Equal(t, once.Value, twice.Value)
}

func TestValidateInviteURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{"empty rejected", "", false},
		{"whitespace only rejected", "   ", false},
		{"discord.gg", "https://discord.gg/abc123", true},
		{"discord.com invite", "https://discord.com/invite/abc-123", true},
		{"http rejected", "http://discord.gg/abc123", false},
		{"other host rejected", "https://example.com/invite/abc", false},
		{"missing code rejected", "https://discord.gg/", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ok, ValidateInviteURL(tt.input).Ok())
		})
	}
}

func TestValidateIconID(t *testing.T) {
	assert.False(t, ValidateIconID(1).Ok())
	assert.True(t, ValidateIconID(2).Ok())
	assert.True(t, ValidateIconID(21).Ok())
	assert.False(t, ValidateIconID(22).Ok())
	assert.False(t, ValidateIconID(0).Ok())
}

func TestValidateCategories(t *testing.T) {
	categories, result := ValidateCategories([]string{"Gaming", "Art", "Gaming"})
	require.True(t, result.Ok())
	assert.Equal(t, []string{"Gaming", "Art"}, categories)

	_, result = ValidateCategories([]string{"Gaming", "Art", "NSFW", "Memes"})
	assert.False(t, result.Ok())

	_, result = ValidateCategories([]string{"Gaming", "NotReal"})
	assert.False(t, result.Ok())

	_, result = ValidateCategories(nil)
	assert.False(t, result.Ok())

	_, result = ValidateCategories([]string{"", "  "})
	assert.False(t, result.Ok())
}

func TestValidateTagInput_ComposesFieldErrors(t *testing.T) {
	_, fieldErrors := ValidateTagInput(TagInput{
		TagName:    "!!!!",
		IconID:     99,
		InviteURL:  "ftp://nope",
		Categories: []string{"Gaming", "Art", "NSFW", "Memes"},
	})

	require.NotNil(t, fieldErrors)
	assert.Contains(t, fieldErrors, "tag_name")
	assert.Contains(t, fieldErrors, "icon_id")
	assert.Contains(t, fieldErrors, "invite_url")
	assert.Contains(t, fieldErrors, "categories")
}

func TestValidateTagInput_RequiresInviteAndCategories(t *testing.T) {
	validated, fieldErrors := ValidateTagInput(TagInput{TagName: "ABCD", IconID: 2})

	assert.Nil(t, validated)
	require.NotNil(t, fieldErrors)
	assert.Contains(t, fieldErrors, "invite_url")
	assert.Contains(t, fieldErrors, "categories")
}

func TestValidateTagInput_Valid(t *testing.T) {
	validated, fieldErrors := ValidateTagInput(TagInput{
		TagName:     "cool",
		IconID:      10,
		InviteURL:   "https://discord.gg/cool",
		Description: "  a cool place  ",
		Categories:  []string{"Gaming"},
	})

	require.Nil(t, fieldErrors)
	assert.Equal(t, "COOL", validated.TagName)
	assert.Equal(t, "a cool place", validated.Description)
	assert.Equal(t, []string{"Gaming"}, validated.Categories)
}
