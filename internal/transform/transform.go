// Package transform is the transformer registry: pure functions mapping a
// cell value to its anonymised replacement.
//
// Array-valued cells are treated as a single opaque field rather than
// unwrapped per-element; this is the simpler contract and is chosen
// deliberately.
package transform

import (
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"io"
	"math/rand/v2"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"

	"github.com/Multiverse-io/anonymiser-sub000/internal/ddl"
	"github.com/Multiverse-io/anonymiser-sub000/internal/strategy"
)

// uniqueEmailCounter is the one process-wide mutable counter the core
// uses: a monotonic sequence backing FakeEmail's unique flag. Sequential
// consistency is enough, since only uniqueness matters.
var uniqueEmailCounter atomic.Uint64

// NextUniqueEmailIndex returns the next value in the process-wide
// monotonic sequence backing FakeEmail(unique=true).
func NextUniqueEmailIndex() uint64 {
	return uniqueEmailCounter.Add(1)
}

// ScalarValue is any column value representable as a dump cell.
type ScalarValue interface {
	~string | ~int | ~int64 | ~float64 | ~bool | time.Time
}

func hash[T ScalarValue](value T) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%v", value)
	return h.Sum64()
}

func seed[T ScalarValue](value T) {
	gofakeit.Seed(hash(value))
}

// nullSentinel is the dump's NULL marker; Apply returns it unchanged
// before dispatching to any transformer.
const nullSentinel = `\N`

// Apply runs kind against input, honouring args, the owning table/column
// names, and the process-wide salt. colType and rowFields (the row's
// pre-transform field values) are accepted but no transformer reads them.
// For FakeUUID, FakeEmail without unique, the Fake* name/address kinds and
// FakeBase16String/FakeBase32String, args["deterministic"]="true" makes the
// result a pure function of (kind, args, salt, table, column, input);
// Scramble and HashBcrypt stay random whatever the flag says.
func Apply(
	kind strategy.TransformerKind,
	args map[string]string,
	input string,
	colType ddl.ColumnType,
	tableName, columnName string,
	rowFields []string,
	salt string,
) (string, error) {
	if input == nullSentinel {
		return input, nil
	}

	deterministic := args["deterministic"] == "true"

	switch kind {
	case strategy.Identity:
		return input, nil

	case strategy.Error:
		panic(fmt.Sprintf("reached the Error transformer sentinel at runtime for %s.%s; validation should have rejected this strategy file", tableName, columnName))

	case strategy.Fixed:
		value, ok := args["value"]
		if !ok {
			return "", fmt.Errorf("transformer Fixed for %s.%s is missing required arg %q", tableName, columnName, "value")
		}
		return value, nil

	case strategy.Redact:
		return "Redacted \U0001F910", nil

	case strategy.EmptyJson:
		return "{}", nil

	case strategy.Scramble:
		return scramble(input), nil

	case strategy.ObfuscateDay:
		t, err := time.Parse("2006-01-02", input)
		if err != nil {
			return "", fmt.Errorf("transformer ObfuscateDay for %s.%s: invalid date %q: %w", tableName, columnName, input, err)
		}
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).Format("2006-01-02"), nil

	case strategy.FakeUUID:
		if deterministic {
			return deterministicUUID(salt, tableName, columnName, input).String(), nil
		}
		return uuid.New().String(), nil

	case strategy.FakeEmail:
		return fakeEmail(args, salt, tableName, columnName, input), nil

	case strategy.FakeFirstName:
		seed(deterministicSeed(deterministic, salt, tableName, columnName, input))
		return gofakeit.FirstName(), nil
	case strategy.FakeLastName:
		seed(deterministicSeed(deterministic, salt, tableName, columnName, input))
		return gofakeit.LastName(), nil
	case strategy.FakeFullName:
		seed(deterministicSeed(deterministic, salt, tableName, columnName, input))
		return gofakeit.Name(), nil
	case strategy.FakeCompanyName:
		seed(deterministicSeed(deterministic, salt, tableName, columnName, input))
		return gofakeit.Company(), nil
	case strategy.FakeCity:
		seed(deterministicSeed(deterministic, salt, tableName, columnName, input))
		return gofakeit.Address().City, nil
	case strategy.FakeState:
		seed(deterministicSeed(deterministic, salt, tableName, columnName, input))
		return gofakeit.Address().State, nil
	case strategy.FakePostCode:
		seed(deterministicSeed(deterministic, salt, tableName, columnName, input))
		return gofakeit.Address().Zip, nil
	case strategy.FakeStreetAddress:
		seed(deterministicSeed(deterministic, salt, tableName, columnName, input))
		return gofakeit.Address().Street, nil
	case strategy.FakeFullAddress:
		seed(deterministicSeed(deterministic, salt, tableName, columnName, input))
		return gofakeit.Address().Address, nil
	case strategy.FakeIPv4:
		seed(deterministicSeed(deterministic, salt, tableName, columnName, input))
		return gofakeit.IPv4Address(), nil
	case strategy.FakePhoneNumber:
		seed(deterministicSeed(deterministic, salt, tableName, columnName, input))
		return gofakeit.Phone(), nil
	case strategy.FakeUsername:
		seed(deterministicSeed(deterministic, salt, tableName, columnName, input))
		return gofakeit.Username(), nil
	case strategy.FakeNationalIdentityNumber:
		seed(deterministicSeed(deterministic, salt, tableName, columnName, input))
		return gofakeit.SSN(), nil
	case strategy.FakeBase16String:
		return randomString(deterministic, salt, tableName, columnName, input, hex.EncodeToString), nil
	case strategy.FakeBase32String:
		return randomString(deterministic, salt, tableName, columnName, input, base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString), nil

	case strategy.HashBcrypt:
		return hashBcrypt(args, input)
	case strategy.HashScrypt:
		return hashScrypt(args, salt, tableName, columnName, input)
	case strategy.HashPBKDF2:
		return hashPBKDF2(args, salt, tableName, columnName, input)
	case strategy.HashArgon2id:
		return hashArgon2id(args, salt, tableName, columnName, input)

	default:
		return "", fmt.Errorf("unimplemented transformer kind %q for %s.%s", kind, tableName, columnName)
	}
}

func deterministicSeed(deterministic bool, salt, table, column, input string) string {
	if deterministic {
		return salt + "\x00" + table + "\x00" + column + "\x00" + input
	}
	return input
}

func scramble(input string) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	runes := []rune(input)
	out := make([]rune, len(runes))
	for i := range out {
		out[i] = rune(alphabet[rand.IntN(len(alphabet))])
	}
	return string(out)
}

// deterministicUUID derives a stable v5 UUID from the salt-keyed name.
func deterministicUUID(salt, table, column, input string) uuid.UUID {
	namespace := uuid.NewSHA1(uuid.Nil, []byte(salt))
	name := table + "\x00" + column + "\x00" + input
	return uuid.NewSHA1(namespace, []byte(name))
}

func fakeEmail(args map[string]string, salt, table, column, input string) string {
	deterministic := args["deterministic"] == "true"
	unique := args["unique"] == "true"

	var local string
	if deterministic {
		key := hkdfKey(salt, table+"\x00"+column+"\x00"+input, 8)
		local = hex.EncodeToString(key)
	} else {
		seed(input)
		local = gofakeit.Username()
	}

	if unique {
		local = fmt.Sprintf("%d-%s", NextUniqueEmailIndex(), local)
	}
	return local + "@example-anon.test"
}

// hkdfKey derives length bytes from HKDF(salt, info), the keyed hash
// behind the deterministic FakeEmail, FakeBase16String and
// FakeBase32String branches.
func hkdfKey(salt, info string, length int) []byte {
	r := hkdf.New(sha256.New, []byte(info), []byte(salt), nil)
	out := make([]byte, length)
	if _, err := io.ReadFull(r, out); err != nil {
		// hkdf only fails if the requested length exceeds its limit,
		// which cannot happen for the small keys used here.
		panic(err)
	}
	return out
}

func randomString(deterministic bool, salt, table, column, input string, encode func([]byte) string) string {
	const length = 16
	if deterministic {
		return encode(hkdfKey(salt, table+"\x00"+column+"\x00"+input, length))
	}
	b := make([]byte, length)
	for i := range b {
		b[i] = byte(rand.IntN(256))
	}
	return encode(b)
}

// generateDeterministicSalt cycles a SHA-256 digest of seed to fill
// length bytes.
func generateDeterministicSalt(seedVal string, length int) []byte {
	h := sha256.Sum256([]byte(seedVal))
	out := make([]byte, length)
	for i := range out {
		out[i] = h[i%len(h)]
	}
	return out
}

func fakePasswordFor(input string) string {
	seed(input)
	return gofakeit.Password(true, true, true, true, true, 16)
}

func hashBcrypt(args map[string]string, input string) (string, error) {
	cost := bcrypt.DefaultCost
	if v, ok := args["cost"]; ok {
		if c, err := strconv.Atoi(v); err == nil {
			cost = c
		}
	}
	pwd := fakePasswordFor(input)
	if len(pwd) > 72 {
		pwd = pwd[:72]
	}
	out, err := bcrypt.GenerateFromPassword([]byte(pwd), cost)
	if err != nil {
		return "", fmt.Errorf("HashBcrypt: %w", err)
	}
	return string(out), nil
}

func hashScrypt(args map[string]string, salt, table, column, input string) (string, error) {
	n := intArg(args, "n", 32768)
	r := intArg(args, "r", 8)
	p := intArg(args, "p", 1)
	pwd := fakePasswordFor(input)
	saltBytes := generateDeterministicSalt(salt+table+column+input, 16)
	out, err := scrypt.Key([]byte(pwd), saltBytes, n, r, p, 32)
	if err != nil {
		return "", fmt.Errorf("HashScrypt: %w", err)
	}
	return fmt.Sprintf("%x$%x", saltBytes, out), nil
}

func hashPBKDF2(args map[string]string, salt, table, column, input string) (string, error) {
	iterations := intArg(args, "iterations", 600000)
	pwd := fakePasswordFor(input)
	saltBytes := generateDeterministicSalt(salt+table+column+input, 16)
	out := pbkdf2.Key([]byte(pwd), saltBytes, iterations, 32, sha256.New)
	return fmt.Sprintf("%x$%x", saltBytes, out), nil
}

func hashArgon2id(args map[string]string, salt, table, column, input string) (string, error) {
	timeCost := uint32(intArg(args, "time", 3))
	memory := uint32(intArg(args, "memory", 65536))
	threads := uint8(intArg(args, "threads", 4))
	pwd := fakePasswordFor(input)
	saltBytes := generateDeterministicSalt(salt+table+column+input, 16)
	out := argon2.IDKey([]byte(pwd), saltBytes, timeCost, memory, threads, 32)
	return fmt.Sprintf("%x$%x", saltBytes, out), nil
}

func intArg(args map[string]string, key string, def int) int {
	if v, ok := args[key]; ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
