package goVerify

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPrefix = "vc"

	recordVersionV1 = 1

	// recordKindIssuance marks a live verification code record.
	// recordKindSentinel marks legacy rate-limit markers written by older
	// deployments. Sentinel records are skipped on read and never written.
	recordKindIssuance = 1
	recordKindSentinel = 2

	recordCASRetries = 16
)

var (
	errRecordNotFound         = errors.New("verification record not found")
	errRecordExpired          = errors.New("verification record expired")
	errRecordMismatch         = errors.New("verification code mismatch")
	errRecordLockedOut        = errors.New("verification attempts exceeded")
	errRecordRateLimited      = errors.New("verification send rate limited")
	errRecordRedisUnavailable = errors.New("verification redis unavailable")
	errRecordCASExhausted     = errors.New("verification record contention")
)

type verificationRecord struct {
	ID             string
	SubjectID      string
	Recipient      string
	Locale         string
	CodeHash       [32]byte
	Kind           byte
	FailedAttempts uint16
	SendCount      uint16
	WindowStart    int64 // unix seconds
	ExpiresAt      int64 // unix seconds
	CreatedAt      int64 // unix milliseconds
}

type recordStore struct {
	redis  *redis.Client
	prefix string
}

func newRecordStore(redisClient *redis.Client, prefix string) *recordStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &recordStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *recordStore) recordKey(tenantID, recordID string) string {
	return s.prefix + ":" + tenantID + ":rec:" + recordID
}

func (s *recordStore) indexKey(tenantID, recipient string) string {
	return s.prefix + ":" + tenantID + ":idx:" + recipient
}

// Create describes the create operation and its observable behavior.
//
// Create appends a new issuance record for the recipient after enforcing the
// send window against the most recent live record. The recipient index is
// watched so that two concurrent creates for the same recipient cannot both
// observe the same send count; the losing write is retried against fresh state.
//
// Create may return an error when input validation, dependency calls, or security checks fail.
// Create does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *recordStore) Create(
	ctx context.Context,
	tenantID string,
	record *verificationRecord,
	ttl time.Duration,
	window time.Duration,
	maxSends int,
	now time.Time,
) (remaining int, resetAt time.Time, err error) {
	indexKey := s.indexKey(tenantID, record.Recipient)

	for i := 0; i < recordCASRetries; i++ {
		var (
			outRemaining int
			outResetAt   time.Time
		)

		watchErr := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			latest, latestErr := s.latestInTx(ctx, tx, tenantID, record.Recipient)
			if latestErr != nil && !errors.Is(latestErr, errRecordNotFound) {
				return latestErr
			}

			record.Kind = recordKindIssuance
			record.SendCount = 1
			record.WindowStart = now.Unix()

			if latest != nil && now.Unix()-latest.WindowStart < int64(window/time.Second) {
				if int(latest.SendCount) >= maxSends {
					outResetAt = time.Unix(latest.WindowStart, 0).Add(window)
					return errRecordRateLimited
				}
				record.SendCount = latest.SendCount + 1
				record.WindowStart = latest.WindowStart
			}

			// Index scores must be strictly increasing per recipient so the
			// newest record always wins the lookup, even when two issues land
			// in the same millisecond.
			if latest != nil && record.CreatedAt <= latest.CreatedAt {
				record.CreatedAt = latest.CreatedAt + 1
			}

			encoded, encErr := encodeVerificationRecord(record)
			if encErr != nil {
				return encErr
			}

			_, pipeErr := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, s.recordKey(tenantID, record.ID), encoded, ttl)
				pipe.ZAdd(ctx, indexKey, redis.Z{
					Score:  float64(record.CreatedAt),
					Member: record.ID,
				})
				pipe.PExpire(ctx, indexKey, ttl)
				return nil
			})
			if pipeErr != nil {
				return pipeErr
			}

			outRemaining = maxSends - int(record.SendCount)
			outResetAt = time.Unix(record.WindowStart, 0).Add(window)
			return nil
		}, indexKey)

		if watchErr == redis.TxFailedErr {
			continue
		}
		if watchErr != nil {
			switch {
			case errors.Is(watchErr, errRecordRateLimited):
				return 0, outResetAt, watchErr
			default:
				return 0, time.Time{}, fmt.Errorf("%w: %v", errRecordRedisUnavailable, watchErr)
			}
		}

		return outRemaining, outResetAt, nil
	}

	return 0, time.Time{}, fmt.Errorf("%w: %v", errRecordRedisUnavailable, errRecordCASExhausted)
}

// Consume describes the consume operation and its observable behavior.
//
// Consume resolves the most recent live record for the recipient and checks the
// provided code hash against it. A mismatch increments the failed attempt
// counter under the same watch that read it, so concurrent mismatches cannot
// lose increments. Expiry, lockout, and success all purge every record held for
// the recipient.
//
// Consume may return an error when input validation, dependency calls, or security checks fail.
// Consume does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *recordStore) Consume(
	ctx context.Context,
	tenantID, recipient string,
	providedHash [32]byte,
	maxAttempts int,
	now time.Time,
) (*verificationRecord, int, error) {
	indexKey := s.indexKey(tenantID, recipient)

	for i := 0; i < recordCASRetries; i++ {
		latest, err := s.Latest(ctx, tenantID, recipient)
		if err != nil {
			return nil, 0, err
		}

		recordKey := s.recordKey(tenantID, latest.ID)

		var (
			matched      *verificationRecord
			attemptsLeft int
		)

		watchErr := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			current, curErr := s.latestInTx(ctx, tx, tenantID, recipient)
			if curErr != nil {
				return curErr
			}
			if current.ID != latest.ID {
				// Another writer replaced the head of the index between the
				// lookup and the watch. Retry against the fresh head.
				return redis.TxFailedErr
			}

			// A record is usable strictly before its expiry instant.
			if now.Unix() >= current.ExpiresAt {
				if purgeErr := s.purgeInTx(ctx, tx, tenantID, recipient, indexKey); purgeErr != nil {
					return purgeErr
				}
				return errRecordExpired
			}

			if subtle.ConstantTimeCompare(current.CodeHash[:], providedHash[:]) != 1 {
				current.FailedAttempts++
				if int(current.FailedAttempts) >= maxAttempts {
					if purgeErr := s.purgeInTx(ctx, tx, tenantID, recipient, indexKey); purgeErr != nil {
						return purgeErr
					}
					return errRecordLockedOut
				}

				ttl := time.Unix(current.ExpiresAt, 0).Sub(now)
				if ttl <= 0 {
					if purgeErr := s.purgeInTx(ctx, tx, tenantID, recipient, indexKey); purgeErr != nil {
						return purgeErr
					}
					return errRecordExpired
				}

				updated, encErr := encodeVerificationRecord(current)
				if encErr != nil {
					return encErr
				}

				_, pipeErr := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Set(ctx, recordKey, updated, ttl)
					return nil
				})
				if pipeErr != nil {
					return pipeErr
				}

				attemptsLeft = maxAttempts - int(current.FailedAttempts)
				return errRecordMismatch
			}

			if purgeErr := s.purgeInTx(ctx, tx, tenantID, recipient, indexKey); purgeErr != nil {
				return purgeErr
			}

			matched = current
			return nil
		}, indexKey, recordKey)

		if watchErr == redis.TxFailedErr {
			continue
		}
		if watchErr != nil {
			switch {
			case errors.Is(watchErr, errRecordNotFound),
				errors.Is(watchErr, errRecordExpired),
				errors.Is(watchErr, errRecordMismatch),
				errors.Is(watchErr, errRecordLockedOut):
				return nil, attemptsLeft, watchErr
			default:
				return nil, 0, fmt.Errorf("%w: %v", errRecordRedisUnavailable, watchErr)
			}
		}

		return matched, 0, nil
	}

	return nil, 0, fmt.Errorf("%w: %v", errRecordRedisUnavailable, errRecordCASExhausted)
}

// Latest describes the latest operation and its observable behavior.
//
// Latest returns the newest live issuance record for the recipient. Legacy
// sentinel records are skipped and index entries whose record key has already
// expired are pruned as they are encountered.
//
// Latest may return an error when input validation, dependency calls, or security checks fail.
// Latest does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *recordStore) Latest(ctx context.Context, tenantID, recipient string) (*verificationRecord, error) {
	indexKey := s.indexKey(tenantID, recipient)

	ids, err := s.redis.ZRevRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errRecordRedisUnavailable, err)
	}

	for _, id := range ids {
		data, getErr := s.redis.Get(ctx, s.recordKey(tenantID, id)).Bytes()
		if getErr != nil {
			if errors.Is(getErr, redis.Nil) {
				_ = s.redis.ZRem(ctx, indexKey, id).Err()
				continue
			}
			return nil, fmt.Errorf("%w: %v", errRecordRedisUnavailable, getErr)
		}

		record, decErr := decodeVerificationRecord(data)
		if decErr != nil {
			return nil, decErr
		}
		if record.Kind == recordKindSentinel {
			continue
		}

		return record, nil
	}

	return nil, errRecordNotFound
}

// Remove describes the remove operation and its observable behavior.
//
// Remove deletes a single record and its index entry. It is used to roll back
// an issuance whose delivery failed.
//
// Remove may return an error when input validation, dependency calls, or security checks fail.
// Remove does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *recordStore) Remove(ctx context.Context, tenantID, recipient, recordID string) error {
	_, err := s.redis.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.recordKey(tenantID, recordID))
		pipe.ZRem(ctx, s.indexKey(tenantID, recipient), recordID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errRecordRedisUnavailable, err)
	}
	return nil
}

// PurgeRecipient describes the purgerecipient operation and its observable behavior.
//
// PurgeRecipient may return an error when input validation, dependency calls, or security checks fail.
// PurgeRecipient does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *recordStore) PurgeRecipient(ctx context.Context, tenantID, recipient string) (int, error) {
	indexKey := s.indexKey(tenantID, recipient)

	ids, err := s.redis.ZRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errRecordRedisUnavailable, err)
	}

	_, err = s.redis.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			pipe.Del(ctx, s.recordKey(tenantID, id))
		}
		pipe.Del(ctx, indexKey)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errRecordRedisUnavailable, err)
	}

	return len(ids), nil
}

func (s *recordStore) latestInTx(ctx context.Context, tx *redis.Tx, tenantID, recipient string) (*verificationRecord, error) {
	ids, err := tx.ZRevRange(ctx, s.indexKey(tenantID, recipient), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		data, getErr := tx.Get(ctx, s.recordKey(tenantID, id)).Bytes()
		if getErr != nil {
			if errors.Is(getErr, redis.Nil) {
				continue
			}
			return nil, getErr
		}

		record, decErr := decodeVerificationRecord(data)
		if decErr != nil {
			return nil, decErr
		}
		if record.Kind == recordKindSentinel {
			continue
		}

		return record, nil
	}

	return nil, errRecordNotFound
}

func (s *recordStore) purgeInTx(ctx context.Context, tx *redis.Tx, tenantID, recipient, indexKey string) error {
	ids, err := tx.ZRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return err
	}

	_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			pipe.Del(ctx, s.recordKey(tenantID, id))
		}
		pipe.Del(ctx, indexKey)
		return nil
	})
	return err
}

func encodeVerificationRecord(record *verificationRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(recordVersionV1)
	buf.WriteByte(record.Kind)

	if err := binary.Write(&buf, binary.BigEndian, record.FailedAttempts); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, record.SendCount); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, record.WindowStart); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, record.ExpiresAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, record.CreatedAt); err != nil {
		return nil, err
	}
	buf.Write(record.CodeHash[:])

	for _, field := range []string{record.ID, record.SubjectID, record.Recipient, record.Locale} {
		if len(field) > 65535 {
			return nil, errors.New("verification record field too long")
		}
		if err := binary.Write(&buf, binary.BigEndian, uint16(len(field))); err != nil {
			return nil, err
		}
		buf.WriteString(field)
	}

	return buf.Bytes(), nil
}

func decodeVerificationRecord(data []byte) (*verificationRecord, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != recordVersionV1 {
		return nil, errors.New("invalid verification record version " + strconv.Itoa(int(version)))
	}

	record := &verificationRecord{}

	if record.Kind, err = reader.ReadByte(); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &record.FailedAttempts); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &record.SendCount); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &record.WindowStart); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &record.ExpiresAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &record.CreatedAt); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(reader, record.CodeHash[:]); err != nil {
		return nil, err
	}

	for _, target := range []*string{&record.ID, &record.SubjectID, &record.Recipient, &record.Locale} {
		var fieldLen uint16
		if err := binary.Read(reader, binary.BigEndian, &fieldLen); err != nil {
			return nil, err
		}
		field := make([]byte, fieldLen)
		if _, err := io.ReadFull(reader, field); err != nil {
			return nil, err
		}
		*target = string(field)
	}

	return record, nil
}
