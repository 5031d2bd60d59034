package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tagcord/tagcord-backend/internal/app/model"
)

var (
	tagNameRe   = regexp.MustCompile(`^[A-Za-z0-9]{1,4}$`)
	inviteURLRe = regexp.MustCompile(`^https://(discord\.gg|discord\.com/invite)/[A-Za-z0-9-]+$`)
)

const (
	minIconID = 2
	maxIconID = 21
)

// FieldResult is the outcome of validating one form field: either a
// normalized value or a reason it was rejected, never both.
type FieldResult struct {
	Value  string
	Reason string
}

func fieldOk(value string) FieldResult {
	return FieldResult{Value: value}
}

func fieldError(reason string) FieldResult {
	return FieldResult{Reason: reason}
}

func (r FieldResult) Ok() bool {
	return r.Reason == ""
}

// ValidateTagName trims, checks the 1-4 alphanumeric shape, then uppercases.
// Uppercasing is idempotent so re-validating a stored name yields itself.
func ValidateTagName(raw string) FieldResult {
	name := strings.TrimSpace(raw)
	if name == "" {
		return fieldError("Tag name is required")
	}
	if !tagNameRe.MatchString(name) {
		return fieldError("Tag name must be 1-4 letters or numbers")
	}
	return fieldOk(strings.ToUpper(name))
}

// ValidateInviteURL requires a discord.gg / discord.com/invite URL.
func ValidateInviteURL(raw string) FieldResult {
	link := strings.TrimSpace(raw)
	if link == "" {
		return fieldError("Discord invite link is required")
	}
	if !inviteURLRe.MatchString(link) {
		return fieldError("Invite link must look like https://discord.gg/yourcode")
	}
	return fieldOk(link)
}

func ValidateIconID(iconID int) FieldResult {
	if iconID < minIconID || iconID > maxIconID {
		return fieldError(fmt.Sprintf("Icon must be between %d and %d", minIconID, maxIconID))
	}
	return fieldOk("")
}

// ValidateCategories drops blanks, rejects anything outside the vocabulary
// and requires one to three of them. Returns the cleaned list on success.
func ValidateCategories(raw []string) ([]string, FieldResult) {
	seen := make(map[string]bool)
	categories := make([]string, 0, len(raw))
	for _, category := range raw {
		category = strings.TrimSpace(category)
		if category == "" || seen[category] {
			continue
		}
		if !model.IsValidCategory(category) {
			return nil, fieldError(fmt.Sprintf("Unknown category: %s", category))
		}
		seen[category] = true
		categories = append(categories, category)
	}
	if len(categories) == 0 {
		return nil, fieldError("Pick at least one category")
	}
	if len(categories) > model.MaxCategoriesPerTag {
		return nil, fieldError(fmt.Sprintf("Pick at most %d categories", model.MaxCategoriesPerTag))
	}
	return categories, fieldOk("")
}

// TagInput is a full tag submission before validation.
type TagInput struct {
	TagName     string   `json:"tag_name"`
	IconID      int      `json:"icon_id"`
	InviteURL   string   `json:"invite_url"`
	Description string   `json:"description"`
	ImageURL    string   `json:"image_url"`
	Categories  []string `json:"categories"`
}

// ValidatedTag is a submission that passed every field check, with values
// already normalized.
type ValidatedTag struct {
	TagName     string
	IconID      int
	InviteURL   string
	Description string
	ImageURL    string
	Categories  []string
}

// ValidateTagInput composes the per-field checks into one form-level result.
// On failure the map carries one reason per offending field.
func ValidateTagInput(input TagInput) (*ValidatedTag, map[string]string) {
	fieldErrors := make(map[string]string)

	name := ValidateTagName(input.TagName)
	if !name.Ok() {
		fieldErrors["tag_name"] = name.Reason
	}

	if icon := ValidateIconID(input.IconID); !icon.Ok() {
		fieldErrors["icon_id"] = icon.Reason
	}

	invite := ValidateInviteURL(input.InviteURL)
	if !invite.Ok() {
		fieldErrors["invite_url"] = invite.Reason
	}

	categories, categoryResult := ValidateCategories(input.Categories)
	if !categoryResult.Ok() {
		fieldErrors["categories"] = categoryResult.Reason
	}

	if len(fieldErrors) > 0 {
		return nil, fieldErrors
	}

	return &ValidatedTag{
		TagName:     name.Value,
		IconID:      input.IconID,
		InviteURL:   invite.Value,
		Description: strings.TrimSpace(input.Description),
		ImageURL:    strings.TrimSpace(input.ImageURL),
		Categories:  categories,
	}, nil
}
