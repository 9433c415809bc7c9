package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HistoryStatus - запись журнала смены статуса.
type HistoryStatus struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	RelatedID   string             `bson:"related_id" json:"related_id"`
	RelatedType string             `bson:"related_type" json:"related_type"`
	OldStatus   string             `bson:"old_status" json:"old_status"`
	NewStatus   string             `bson:"new_status" json:"new_status"`
	ChangedBy   string             `bson:"changed_by" json:"changed_by"`
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
	Note        string             `bson:"note,omitempty" json:"note,omitempty"`
}
