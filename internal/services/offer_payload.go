package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/senyabanana/marketplace-service/internal/models"
)

// Ограничения совпадают с размерами колонок в миграциях.
const (
	maxTitleLength     = 255
	maxOfferTypeLength = 50
	maxDetailNumber    = math.MaxInt32
)

// Ключи, которые обязан содержать каждый тариф в PATCH-запросе.
var detailPatchKeys = []string{"title", "revisions", "delivery_time_in_days", "price", "features", "offer_type"}

// parseOfferRequest разбирает тело запроса на создание предложения.
func parseOfferRequest(payload []byte) (*models.OfferRequest, []models.OfferDetailRequest, error) {
	var req models.OfferRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, nil, models.NewKindError(models.KindInvalidPayload, "invalid request body")
	}
	if err := validateOfferText(&req.Title, &req.Image); err != nil {
		return nil, nil, err
	}

	var rawDetails []json.RawMessage
	if len(req.Details) > 0 && !isNull(req.Details) {
		if err := json.Unmarshal(req.Details, &rawDetails); err != nil {
			return nil, nil, models.NewKindError(models.KindInvalidPayload, "details must be a list")
		}
	}
	if len(rawDetails) != OfferDetailCount {
		return nil, nil, models.NewKindError(models.KindInvalidPayload,
			fmt.Sprintf("an offer must contain exactly %d details", OfferDetailCount))
	}

	details := make([]models.OfferDetailRequest, 0, OfferDetailCount)
	seen := make(map[string]bool, OfferDetailCount)
	for _, raw := range rawDetails {
		var detail models.OfferDetailRequest
		if err := json.Unmarshal(raw, &detail); err != nil {
			return nil, nil, models.NewKindError(models.KindInvalidPayload, "invalid offer detail")
		}
		if err := validateDetailRequest(detail); err != nil {
			return nil, nil, err
		}
		if seen[detail.OfferType] {
			return nil, nil, models.NewKindError(models.KindInvalidPayload, "offer_type must be unique within an offer")
		}
		seen[detail.OfferType] = true
		details = append(details, detail)
	}

	return &req, details, nil
}

func validateDetailRequest(detail models.OfferDetailRequest) error {
	if detail.Price == nil || detail.DeliveryTimeInDays == nil {
		return models.NewKindError(models.KindInvalidPayload, "each detail requires price and delivery_time_in_days")
	}
	if strings.TrimSpace(detail.OfferType) == "" {
		return models.NewKindError(models.KindInvalidPayload, "each detail requires offer_type")
	}
	if err := validateDetailText(&detail.Title, &detail.OfferType, detail.Features); err != nil {
		return err
	}
	return validateDetailValues(detail.Price, detail.DeliveryTimeInDays, &detail.Revisions)
}

func validateDetailValues(price, deliveryTime, revisions *int) error {
	if price != nil && *price < 0 {
		return models.NewKindError(models.KindInvalidPayload, "price must not be negative")
	}
	if deliveryTime != nil && *deliveryTime <= 0 {
		return models.NewKindError(models.KindInvalidPayload, "delivery_time_in_days must be positive")
	}
	if revisions != nil && *revisions < -1 {
		return models.NewKindError(models.KindInvalidPayload, "revisions must be -1 (unlimited) or greater")
	}
	for name, value := range map[string]*int{"price": price, "delivery_time_in_days": deliveryTime, "revisions": revisions} {
		if value != nil && *value > maxDetailNumber {
			return models.NewKindError(models.KindInvalidPayload, fmt.Sprintf("%s must not exceed %d", name, maxDetailNumber))
		}
	}
	return nil
}

func validateOfferText(title, image *string) error {
	if err := checkLength("title", title, maxTitleLength); err != nil {
		return err
	}
	return checkLength("image", image, maxTitleLength)
}

func validateDetailText(title, offerType *string, features []string) error {
	if err := checkLength("title", title, maxTitleLength); err != nil {
		return err
	}
	if err := checkLength("offer_type", offerType, maxOfferTypeLength); err != nil {
		return err
	}
	for i := range features {
		if err := checkLength("feature", &features[i], maxTitleLength); err != nil {
			return err
		}
	}
	return nil
}

// checkLength считает символы, а не байты, как VARCHAR(n).
func checkLength(name string, value *string, limit int) error {
	if value != nil && utf8.RuneCountInString(*value) > limit {
		return models.NewKindError(models.KindInvalidPayload, fmt.Sprintf("%s must be at most %d characters", name, limit))
	}
	return nil
}

// ParseOfferPatch проверяет тело PATCH-запроса целиком и возвращает изменения.
// Неизвестные ключи верхнего уровня игнорируются, null означает "не менять".
func ParseOfferPatch(payload []byte) (*models.OfferPatch, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil || raw == nil {
		return nil, models.NewKindError(models.KindInvalidPayload, "invalid request body")
	}

	patch := &models.OfferPatch{}
	fields := map[string]**string{
		"title":       &patch.Title,
		"image":       &patch.Image,
		"description": &patch.Description,
	}
	for key, target := range fields {
		value, ok := raw[key]
		if !ok {
			continue
		}
		s, err := optionalString(key, value)
		if err != nil {
			return nil, err
		}
		*target = s
	}
	if err := validateOfferText(patch.Title, patch.Image); err != nil {
		return nil, err
	}

	rawDetails, ok := raw["details"]
	if !ok || isNull(rawDetails) {
		return patch, nil
	}

	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(rawDetails, &entries); err != nil {
		return nil, models.NewKindError(models.KindInvalidPayload, "details must be a list of objects")
	}
	for _, entry := range entries {
		detail, err := parseDetailPatch(entry)
		if err != nil {
			return nil, err
		}
		patch.Details = append(patch.Details, detail)
	}
	return patch, nil
}

func parseDetailPatch(entry map[string]json.RawMessage) (models.OfferDetailPatch, error) {
	var detail models.OfferDetailPatch

	for _, key := range detailPatchKeys {
		if _, ok := entry[key]; !ok {
			return detail, models.NewKindError(models.KindIncompleteDetail,
				fmt.Sprintf("incomplete details: every detail must contain %s", strings.Join(detailPatchKeys, ", ")))
		}
	}
	if len(entry) != len(detailPatchKeys) {
		return detail, models.NewKindError(models.KindInvalidDetailKeys,
			fmt.Sprintf("invalid request data: unexpected detail keys %s", strings.Join(extraKeys(entry), ", ")))
	}

	var err error
	if detail.OfferType, err = optionalString("offer_type", entry["offer_type"]); err != nil {
		return detail, err
	}
	if detail.Title, err = optionalString("title", entry["title"]); err != nil {
		return detail, err
	}
	if detail.Revisions, err = optionalInt("revisions", entry["revisions"]); err != nil {
		return detail, err
	}
	if detail.DeliveryTimeInDays, err = optionalInt("delivery_time_in_days", entry["delivery_time_in_days"]); err != nil {
		return detail, err
	}
	if detail.Price, err = optionalInt("price", entry["price"]); err != nil {
		return detail, err
	}
	if features := entry["features"]; !isNull(features) {
		if err := json.Unmarshal(features, &detail.Features); err != nil {
			return detail, models.NewKindError(models.KindInvalidPayload, "features must be a list of strings")
		}
		detail.ReplaceFeatures = true
	}

	if err := validateDetailText(detail.Title, detail.OfferType, detail.Features); err != nil {
		return detail, err
	}
	if err := validateDetailValues(detail.Price, detail.DeliveryTimeInDays, detail.Revisions); err != nil {
		return detail, err
	}
	return detail, nil
}

func extraKeys(entry map[string]json.RawMessage) []string {
	allowed := make(map[string]bool, len(detailPatchKeys))
	for _, key := range detailPatchKeys {
		allowed[key] = true
	}
	var extra []string
	for key := range entry {
		if !allowed[key] {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	return extra
}

func optionalString(name string, value json.RawMessage) (*string, error) {
	if isNull(value) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return nil, models.NewKindError(models.KindInvalidPayload, fmt.Sprintf("%s must be a string", name))
	}
	return &s, nil
}

func optionalInt(name string, value json.RawMessage) (*int, error) {
	if isNull(value) {
		return nil, nil
	}
	var n int
	if err := json.Unmarshal(value, &n); err != nil {
		return nil, models.NewKindError(models.KindInvalidPayload, fmt.Sprintf("%s must be an integer", name))
	}
	return &n, nil
}

func isNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}
