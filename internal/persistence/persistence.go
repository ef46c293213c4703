package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/coredex-source/GPU-Util/internal/control"
	"github.com/coredex-source/GPU-Util/internal/curve"
	"github.com/coredex-source/GPU-Util/internal/ui"
)

const (
	bucketCurves   = "curves"
	bucketSettings = "settings"

	keyAdaptiveConfig = "adaptive"
)

// Persistence stores fan curves and adaptive settings across restarts
type Persistence interface {
	// SaveCurve stores the given curve under its name
	SaveCurve(c curve.FanCurve) error
	// LoadCurve loads the curve with the given name.
	// Returns os.ErrNotExist if no such curve was saved.
	LoadCurve(name string) (curve.FanCurve, error)
	// LoadCurves loads all saved curves, keyed by name
	LoadCurves() (map[string]curve.FanCurve, error)
	// DeleteCurve removes the curve with the given name
	DeleteCurve(name string) error

	// SaveAdaptiveConfig stores the last applied adaptive settings
	SaveAdaptiveConfig(config control.AdaptiveConfig) error
	// LoadAdaptiveConfig loads the last applied adaptive settings.
	// Returns os.ErrNotExist if none were saved yet.
	LoadAdaptiveConfig() (control.AdaptiveConfig, error)
}

type persistence struct {
	dbPath string
}

func NewPersistence(dbPath string) Persistence {
	return &persistence{
		dbPath: dbPath,
	}
}

func (p persistence) openPersistence() (*bolt.DB, error) {
	db, err := bolt.Open(p.dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		ui.Error("Could not open database file: %s", p.dbPath)
		return nil, err
	}
	return db, nil
}

func (p persistence) SaveCurve(c curve.FanCurve) error {
	if err := c.Validate(); err != nil {
		return err
	}

	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer db.Close()

	data, err := json.Marshal(c)
	if err != nil {
		return err
	}

	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucketCurves))
		if err != nil {
			return fmt.Errorf("create bucket: %s", err)
		}
		return b.Put([]byte(c.Name), data)
	})
}

func (p persistence) LoadCurve(name string) (curve.FanCurve, error) {
	db, err := p.openPersistence()
	if err != nil {
		return curve.FanCurve{}, err
	}
	defer db.Close()

	result := curve.FanCurve{}
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketCurves))
		if b == nil {
			return os.ErrNotExist
		}
		data := b.Get([]byte(name))
		if data == nil {
			return os.ErrNotExist
		}
		return json.Unmarshal(data, &result)
	})
	return result, err
}

func (p persistence) LoadCurves() (map[string]curve.FanCurve, error) {
	db, err := p.openPersistence()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	result := map[string]curve.FanCurve{}
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketCurves))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			c := curve.FanCurve{}
			if err := json.Unmarshal(v, &c); err != nil {
				ui.Warning("Skipping unreadable curve %s: %v", string(k), err)
				return nil
			}
			result[string(k)] = c
			return nil
		})
	})
	return result, err
}

func (p persistence) DeleteCurve(name string) error {
	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer db.Close()

	return db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketCurves))
		if b == nil {
			return nil
		}
		return b.Delete([]byte(name))
	})
}

func (p persistence) SaveAdaptiveConfig(config control.AdaptiveConfig) error {
	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer db.Close()

	data, err := json.Marshal(config)
	if err != nil {
		return err
	}

	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucketSettings))
		if err != nil {
			return fmt.Errorf("create bucket: %s", err)
		}
		return b.Put([]byte(keyAdaptiveConfig), data)
	})
}

func (p persistence) LoadAdaptiveConfig() (control.AdaptiveConfig, error) {
	db, err := p.openPersistence()
	if err != nil {
		return control.AdaptiveConfig{}, err
	}
	defer db.Close()

	result := control.AdaptiveConfig{}
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketSettings))
		if b == nil {
			return os.ErrNotExist
		}
		data := b.Get([]byte(keyAdaptiveConfig))
		if data == nil {
			return os.ErrNotExist
		}
		return json.Unmarshal(data, &result)
	})
	return result, err
}
