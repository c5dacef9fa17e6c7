package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"kassensystem/internal/logger"
	"kassensystem/internal/models"
)

// Record is one persisted logical key with its JSON-encoded collection.
type Record struct {
	bun.BaseModel `bun:"table:kv_records"`

	Key   string `bun:"key,pk"`
	Value string `bun:"value,notnull"`
}

// KV is the SQLite-backed Store. Collections are stored as whole JSON
// blobs per key, mirroring the browser-storage layout this till replaces.
type KV struct {
	Bun             *bun.DB
	Logger          *logger.Logger
	DefaultPasscode string
}

func NewKV(db *bun.DB, defaultPasscode string, log *logger.Logger) *KV {
	return &KV{Bun: db, Logger: log, DefaultPasscode: defaultPasscode}
}

// load unmarshals the record for key into v. Returns false when the key
// has never been written.
func (k *KV) load(key string, v any) (bool, error) {
	var rec Record
	err := k.Bun.NewSelect().
		Model(&rec).
		Where("key = ?", key).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(rec.Value), v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// save replaces the whole collection stored under key.
func (k *KV) save(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	rec := Record{Key: key, Value: string(data)}
	_, err = k.Bun.NewInsert().
		Model(&rec).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(context.Background())
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	k.Logger.LogStorage("SAVE", key, fmt.Sprintf("%d bytes", len(data)))
	return nil
}

func (k *KV) LoadProducts() ([]models.Product, error) {
	var products []models.Product
	found, err := k.load(KeyProducts, &products)
	if err != nil {
		return nil, err
	}
	if !found {
		return SeedCatalog(), nil
	}
	return products, nil
}

func (k *KV) SaveProducts(products []models.Product) error {
	return k.save(KeyProducts, products)
}

func (k *KV) LoadOrders() ([]models.Order, error) {
	var orders []models.Order
	found, err := k.load(KeyOrders, &orders)
	if err != nil {
		return nil, err
	}
	if !found {
		return []models.Order{}, nil
	}
	return orders, nil
}

func (k *KV) SaveOrders(orders []models.Order) error {
	return k.save(KeyOrders, orders)
}

func (k *KV) LoadSettings() (models.Settings, error) {
	var settings models.Settings
	found, err := k.load(KeySettings, &settings)
	if err != nil {
		return models.Settings{}, err
	}
	if !found {
		return models.DefaultSettings(k.DefaultPasscode), nil
	}
	return settings, nil
}

func (k *KV) SaveSettings(settings models.Settings) error {
	return k.save(KeySettings, settings)
}

func (k *KV) LoadArchive() ([]models.ArchivedEvent, error) {
	var archive []models.ArchivedEvent
	found, err := k.load(KeyArchive, &archive)
	if err != nil {
		return nil, err
	}
	if !found {
		return []models.ArchivedEvent{}, nil
	}
	return archive, nil
}

func (k *KV) SaveArchive(archive []models.ArchivedEvent) error {
	return k.save(KeyArchive, archive)
}
