package validation

import (
	"errors"
	"html"
	"regexp"
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/journey-feed-api/internal/models"
	"github.com/microcosm-cc/bluemonday"
)

const dateLayout = "2006-01-02"

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

var (
	validPhases     = stringValues(models.Phases)
	validOutcomes   = stringValues(models.Outcomes)
	validCategories = stringValues(models.Categories)
)

// Validator normalizes and validates authoring payloads
type Validator struct {
	plain *bluemonday.Policy
	rich  *bluemonday.Policy
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		plain: bluemonday.StrictPolicy(),
		rich:  bluemonday.UGCPolicy(),
	}
}

// PlainText strips all markup from s
func (v *Validator) PlainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(v.plain.Sanitize(s)))
}

// RichText keeps safe user-generated markup in s
func (v *Validator) RichText(s string) string {
	return strings.TrimSpace(v.rich.Sanitize(s))
}

// NormalizeArticle sanitizes text fields in place and maps display labels
// to stored enum values. Unknown values are left for ValidateArticle to
// report.
func (v *Validator) NormalizeArticle(req *models.CreateArticleRequest) {
	req.Title = v.PlainText(req.Title)
	req.Summary = v.PlainText(req.Summary)
	req.Content = v.RichText(req.Content)
	req.ActualEventDate = strings.TrimSpace(req.ActualEventDate)
	req.ImageURL = strings.TrimSpace(req.ImageURL)

	if p, ok := models.ParsePhase(req.Phase); ok {
		req.Phase = string(p)
	}
	if o, ok := models.ParseOutcome(req.Outcome); ok {
		req.Outcome = string(o)
	}

	seen := make(map[string]bool, len(req.Categories))
	cats := make([]string, 0, len(req.Categories))
	for _, raw := range req.Categories {
		c := strings.TrimSpace(raw)
		if parsed, ok := models.ParseCategory(c); ok {
			c = string(parsed)
		}
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		cats = append(cats, c)
	}
	req.Categories = cats
}

// ValidateArticle checks a normalized create request
func (v *Validator) ValidateArticle(req *models.CreateArticleRequest) []models.ValidationError {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.Required.Error("title is required"),
			validation.RuneLength(1, 200).Error("title must be at most 200 characters"),
		),
		validation.Field(&req.Summary,
			validation.RuneLength(0, 500).Error("summary must be at most 500 characters"),
		),
		validation.Field(&req.Content,
			validation.Required.Error("content is required"),
		),
		validation.Field(&req.ActualEventDate,
			validation.Required.Error("actual_event_date is required"),
			validation.By(dateRule),
		),
		validation.Field(&req.Phase,
			validation.Required.Error("phase is required"),
			validation.In(validPhases...).Error("invalid phase, must be one of: considering, launching, early_stage, growth_stage"),
		),
		validation.Field(&req.Outcome,
			validation.In(validOutcomes...).Error("invalid outcome, must be one of: success, failure, other"),
		),
		validation.Field(&req.Categories,
			validation.Each(validation.In(validCategories...).Error("invalid category")),
		),
		validation.Field(&req.ImageURL,
			is.URL.Error("image_url must be a valid URL"),
		),
	)
	return convert(err, map[string]interface{}{
		"title":             req.Title,
		"actual_event_date": req.ActualEventDate,
		"phase":             req.Phase,
		"outcome":           req.Outcome,
		"categories":        req.Categories,
		"image_url":         req.ImageURL,
	})
}

// NormalizeProfile trims and sanitizes profile text fields in place
func (v *Validator) NormalizeProfile(req *models.UpsertProfileRequest) {
	req.Username = strings.TrimSpace(req.Username)
	req.FullName = v.PlainText(req.FullName)
	req.Career = v.PlainText(req.Career)
	req.Bio = v.PlainText(req.Bio)
	req.Website = strings.TrimSpace(req.Website)
	req.AvatarURL = strings.TrimSpace(req.AvatarURL)
	req.ConsiderationStartDate = strings.TrimSpace(req.ConsiderationStartDate)
	req.EntrepreneurshipStartDate = strings.TrimSpace(req.EntrepreneurshipStartDate)
}

// ValidateProfile checks a normalized profile payload
func (v *Validator) ValidateProfile(req *models.UpsertProfileRequest) []models.ValidationError {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Username,
			validation.Required.Error("username is required"),
			validation.RuneLength(3, 30).Error("username must be between 3 and 30 characters"),
			validation.Match(usernameRegex).Error("username may contain only letters, numbers and underscores"),
		),
		validation.Field(&req.FullName,
			validation.Required.Error("full_name is required"),
			validation.RuneLength(1, 100).Error("full_name must be at most 100 characters"),
		),
		validation.Field(&req.Age,
			validation.Min(0).Error("age must not be negative"),
			validation.Max(150).Error("age must be at most 150"),
		),
		validation.Field(&req.Bio,
			validation.RuneLength(0, 1000).Error("bio must be at most 1000 characters"),
		),
		validation.Field(&req.Website,
			is.URL.Error("website must be a valid URL"),
		),
		validation.Field(&req.AvatarURL,
			is.URL.Error("avatar_url must be a valid URL"),
		),
		validation.Field(&req.ConsiderationStartDate,
			validation.Required.Error("consideration_start_date is required"),
			validation.By(dateRule),
		),
		validation.Field(&req.EntrepreneurshipStartDate,
			validation.By(dateRule),
		),
	)
	return convert(err, map[string]interface{}{
		"username":                    req.Username,
		"age":                         req.Age,
		"website":                     req.Website,
		"avatar_url":                  req.AvatarURL,
		"consideration_start_date":    req.ConsiderationStartDate,
		"entrepreneurship_start_date": req.EntrepreneurshipStartDate,
	})
}

// ParseDate accepts YYYY-MM-DD or RFC3339
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func dateRule(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := ParseDate(s); err != nil {
		return validation.NewError("invalid_date", "invalid date format, expected YYYY-MM-DD")
	}
	return nil
}

// convert flattens ozzo errors into field errors ordered by field name
func convert(err error, values map[string]interface{}) []models.ValidationError {
	if err == nil {
		return nil
	}

	var ve validation.Errors
	if !errors.As(err, &ve) {
		return []models.ValidationError{{Field: "unknown", Message: err.Error()}}
	}

	fields := make([]string, 0, len(ve))
	for field := range ve {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	out := make([]models.ValidationError, 0, len(fields))
	for _, field := range fields {
		out = append(out, models.ValidationError{
			Field:   field,
			Message: ve[field].Error(),
			Value:   values[field],
		})
	}
	return out
}

// stringValues converts enum values for validation.In, which compares
// against the plain string fields of a request
func stringValues[T ~string](in []T) []interface{} {
	out := make([]interface{}, len(in))
	for i, v := range in {
		out[i] = string(v)
	}
	return out
}
