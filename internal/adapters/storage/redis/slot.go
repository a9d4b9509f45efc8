package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"surgical-records/internal/domain/records"

	goredis "github.com/go-redis/redis/v8"
)

const DefaultKey = "surgical-records:store"

// Slot guarda el blob del store bajo una sola clave, sin expiración.
type Slot struct {
	client *goredis.Client
	key    string
}

type Options struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// Open conecta y verifica con PING.
func Open(opts Options) (*Slot, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewSlot(client, opts.Key), nil
}

func NewSlot(client *goredis.Client, key string) *Slot {
	key = strings.TrimSpace(key)
	if key == "" {
		key = DefaultKey
	}
	return &Slot{client: client, key: key}
}

var _ records.Medium = (*Slot)(nil)

func (s *Slot) Read(ctx context.Context) ([]byte, error) {
	b, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Slot) Write(ctx context.Context, blob []byte) error {
	return s.client.Set(ctx, s.key, blob, 0).Err()
}

func (s *Slot) Close() error {
	return s.client.Close()
}
