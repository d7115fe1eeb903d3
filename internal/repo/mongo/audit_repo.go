// Package mongo mirrors audit events into a MongoDB collection for fast
// querying and retention. The mirror is optional; the document log stays
// the source of truth.
package mongo

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Rod1202/print-inv/internal/core"
	"github.com/Rod1202/print-inv/internal/service"
)

type Repo struct {
	col *mongo.Collection
}

type Config struct {
	URI           string
	DB            string
	Collection    string
	RetentionDays int64
}

type storedEvent struct {
	ID        string    `bson:"_id"`
	Usuario   string    `bson:"usuario"`
	Fecha     string    `bson:"fecha"`
	Accion    string    `bson:"accion"`
	Serie     string    `bson:"serie"`
	Detalle   string    `bson:"detalle"`
	IdemHash  string    `bson:"idemHash"`
	CreatedAt time.Time `bson:"createdAt"`
}

func New(ctx context.Context, cfg Config) (*Repo, error) {
	cl, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}
	col := cl.Database(cfg.DB).Collection(cfg.Collection)
	if err := ensureIndexes(ctx, col, cfg.RetentionDays); err != nil {
		return nil, err
	}
	return &Repo{col: col}, nil
}

// Insert mirrors one event. The idemHash unique index makes retried appends
// of the same event a no-op instead of a duplicate row.
func (r *Repo) Insert(ctx context.Context, e core.AuditEvent) error {
	doc := storedEvent{
		ID:        newID(),
		Usuario:   e.Usuario,
		Fecha:     e.Fecha,
		Accion:    string(e.Accion),
		Serie:     e.Serie,
		Detalle:   e.Detalle,
		IdemHash:  idemHash(e),
		CreatedAt: time.Now().UTC(),
	}
	_, err := r.col.InsertOne(ctx, doc)
	if err == nil {
		return nil
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, werr := range we.WriteErrors {
			if werr.Code == 11000 {
				return nil
			}
		}
	}
	return err
}

func (r *Repo) List(ctx context.Context, f service.Filter) ([]core.AuditEvent, error) {
	q := bson.M{}
	if f.Usuario != "" {
		q["usuario"] = f.Usuario
	}
	if f.Accion != "" {
		q["accion"] = f.Accion
	}
	if f.Serie != "" {
		q["serie"] = f.Serie
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(f.Limit)).
		SetSkip(int64(f.Offset))

	cur, err := r.col.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var list []core.AuditEvent
	for cur.Next(ctx) {
		var doc storedEvent
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		list = append(list, core.AuditEvent{
			Usuario: doc.Usuario,
			Fecha:   doc.Fecha,
			Accion:  core.Action(doc.Accion),
			Serie:   doc.Serie,
			Detalle: doc.Detalle,
		})
	}
	return list, cur.Err()
}

func idemHash(e core.AuditEvent) string {
	h := sha256.Sum256([]byte(e.Usuario + "|" + e.Fecha + "|" + string(e.Accion) + "|" + e.Serie + "|" + e.Detalle))
	return hex.EncodeToString(h[:])
}

func newID() string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
