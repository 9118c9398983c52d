package models

import "time"

// ProductionRecord is one logged production run on a line. JSON keys match
// the historical data.json format so older store files keep loading; the
// id key is omitted for legacy entries that were written before ids existed.
type ProductionRecord struct {
	ID        string `json:"id,omitempty"`
	Date      string `json:"tanggal"` // YYYY-MM-DD, stamped at creation
	Line      string `json:"line"`
	Product   string `json:"produk"`
	StartTime string `json:"mulai"` // HH:MM, stored verbatim
	EndTime   string `json:"selesai"`
	Quantity  int    `json:"qty"`
	Operator  string `json:"operator"`
}

// GroupMember is one participant of a group conversation as reported by the
// gateway.
type GroupMember struct {
	ID      string `json:"id"`
	IsAdmin bool   `json:"isAdmin"`
}

// AuthContext carries everything the admin gate needs about the inbound
// message. Members is only populated for group conversations.
type AuthContext struct {
	IsGroup  bool
	SenderID string
	Members  []GroupMember
}

// Document describes a generated file to deliver alongside a reply.
type Document struct {
	Path     string
	Filename string
	Caption  string
}

// Reply is the outcome of handling one inbound message. An empty Text means
// no reply at all (unrecognized input).
type Reply struct {
	Text     string
	Document *Document
}

// DailyReport is the aggregated snapshot the scheduler archives to MongoDB
// each night.
type DailyReport struct {
	Date        string         `bson:"date" json:"date"`
	RecordCount int            `bson:"record_count" json:"record_count"`
	TotalQty    int            `bson:"total_qty" json:"total_qty"`
	LineTotals  map[string]int `bson:"line_totals" json:"line_totals"`
	CreatedAt   time.Time      `bson:"created_at" json:"created_at"`
}
