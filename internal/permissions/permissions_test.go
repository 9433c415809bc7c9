package permissions

import (
	"testing"

	"github.com/senyabanana/marketplace-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestIsBusinessProfile(t *testing.T) {
	assert.True(t, IsBusinessProfile(&models.Profile{Type: models.BusinessProfile}))
	assert.False(t, IsBusinessProfile(&models.Profile{Type: models.CustomerProfile}))
	assert.False(t, IsBusinessProfile(nil))
}

func TestIsOfferOwner(t *testing.T) {
	profile := &models.Profile{ID: "p1"}
	assert.True(t, IsOfferOwner(profile, &models.Offer{UserID: "p1"}))
	assert.False(t, IsOfferOwner(profile, &models.Offer{UserID: "p2"}))
	assert.False(t, IsOfferOwner(nil, &models.Offer{UserID: "p1"}))
	assert.False(t, IsOfferOwner(profile, nil))
}

func TestCheck(t *testing.T) {
	business := Subject{UserID: "u1", Profile: &models.Profile{ID: "p1", Type: models.BusinessProfile}}
	customer := Subject{UserID: "u2", Profile: &models.Profile{ID: "p2", Type: models.CustomerProfile}}
	staff := Subject{UserID: "u3", IsStaff: true}
	noProfile := Subject{UserID: "u4"}
	anonymous := Subject{}

	offer := &models.Offer{UserID: "p1"}
	order := &models.Order{CustomerUserID: "p2", BusinessUserID: "p1"}
	review := &models.Review{ReviewerID: "p2"}

	tests := []struct {
		name     string
		action   Action
		subject  Subject
		resource Resource
		want     models.ErrorKind
	}{
		{"anonymous lists offers", OfferList, anonymous, nil, ""},
		{"anonymous reads base info", BaseInfoRetrieve, anonymous, nil, ""},
		{"anonymous retrieves offer", OfferRetrieve, anonymous, nil, models.KindUnauthorized},
		{"business creates offer", OfferCreate, business, nil, ""},
		{"customer creates offer", OfferCreate, customer, nil, models.KindForbidden},
		{"user without profile creates offer", OfferCreate, noProfile, nil, models.KindForbidden},
		{"user without profile orders", OrderCreate, noProfile, nil, models.KindUnauthorized},
		{"owner updates offer", OfferUpdate, business, offer, ""},
		{"stranger updates offer", OfferUpdate, customer, offer, models.KindForbidden},
		{"customer orders", OrderCreate, customer, nil, ""},
		{"business orders", OrderCreate, business, nil, models.KindForbidden},
		{"business party updates order", OrderUpdate, business, order, ""},
		{"customer party updates order", OrderUpdate, customer, order, models.KindForbidden},
		{"customer party reads order", OrderRetrieve, customer, order, ""},
		{"staff reads order", OrderRetrieve, staff, order, ""},
		{"stranger reads order", OrderRetrieve, noProfile, order, models.KindForbidden},
		{"staff deletes order", OrderDelete, staff, nil, ""},
		{"party deletes order", OrderDelete, business, nil, models.KindForbidden},
		{"customer reads review", ReviewRetrieve, customer, nil, ""},
		{"anonymous reads review", ReviewRetrieve, anonymous, nil, models.KindUnauthorized},
		{"reviewer edits review", ReviewUpdate, customer, review, ""},
		{"business edits review", ReviewUpdate, business, review, models.KindForbidden},
		{"unknown action", Action("offer.archive"), business, nil, models.KindForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.action, tt.subject, tt.resource)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.want, models.KindOf(err))
		})
	}
}

func TestEveryActionHasPolicy(t *testing.T) {
	actions := []Action{
		OfferList, OfferRetrieve, OfferCreate, OfferUpdate, OfferDelete, OfferDetailRetrieve,
		ProfileRetrieve, ProfileList, ProfileUpdate,
		OrderList, OrderRetrieve, OrderCreate, OrderUpdate, OrderDelete, OrderHistory, OrderCount,
		ReviewList, ReviewCreate, ReviewUpdate, ReviewDelete,
		BaseInfoRetrieve,
	}
	for _, action := range actions {
		_, ok := Required(action)
		assert.True(t, ok, action)
	}
}
