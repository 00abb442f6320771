package frame

import (
	"fmt"
	"math"
	"net"
	"net/netip"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Type is the logical type of a frame column.
type Type string

const (
	TypeInt       Type = "int"
	TypeFloat     Type = "float"
	TypeBool      Type = "bool"
	TypeString    Type = "string"
	TypeTimestamp Type = "timestamp"
	TypeDate      Type = "date"
	TypeJSON      Type = "json"
	TypeBinary    Type = "binary"
	TypeUnknown   Type = "unknown"
)

// PostgresType returns the column type used when a frame column is created
// as a table column.
func (t Type) PostgresType() string {
	switch t {
	case TypeInt:
		return "bigint"
	case TypeFloat:
		return "double precision"
	case TypeBool:
		return "boolean"
	case TypeTimestamp:
		return "timestamptz"
	case TypeDate:
		return "date"
	case TypeJSON:
		return "jsonb"
	case TypeBinary:
		return "bytea"
	default:
		return "text"
	}
}

// TypeFromOID maps a PostgreSQL type OID to a frame type.
func TypeFromOID(oid uint32) Type {
	switch oid {
	case pgtype.Int2OID, pgtype.Int4OID, pgtype.Int8OID, pgtype.OIDOID:
		return TypeInt
	case pgtype.Float4OID, pgtype.Float8OID, pgtype.NumericOID:
		return TypeFloat
	case pgtype.BoolOID:
		return TypeBool
	case pgtype.TimestampOID, pgtype.TimestamptzOID:
		return TypeTimestamp
	case pgtype.DateOID:
		return TypeDate
	case pgtype.JSONOID, pgtype.JSONBOID:
		return TypeJSON
	case pgtype.ByteaOID:
		return TypeBinary
	case pgtype.TextOID, pgtype.VarcharOID, pgtype.BPCharOID, pgtype.NameOID, pgtype.UUIDOID:
		return TypeString
	default:
		return TypeString
	}
}

// NormalizeValue converts a value decoded by pgx into the plain Go type a
// frame stores: integers widen to int64, floats and numerics to float64,
// UUIDs and network types to their string form.
func NormalizeValue(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case uint32:
		return int64(v)
	case float32:
		return float64(v)
	case pgtype.Numeric:
		if !v.Valid {
			return nil
		}
		if v.NaN {
			return math.NaN()
		}
		f, err := v.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case [16]byte:
		return uuid.UUID(v).String()
	case pgtype.Time:
		if !v.Valid {
			return nil
		}
		return time.Time{}.Add(time.Duration(v.Microseconds) * time.Microsecond).Format("15:04:05.999999")
	case pgtype.Interval:
		if !v.Valid {
			return nil
		}
		return formatInterval(v)
	case netip.Prefix:
		return v.String()
	case netip.Addr:
		return v.String()
	case net.HardwareAddr:
		return v.String()
	default:
		return v
	}
}

func formatInterval(v pgtype.Interval) string {
	d := time.Duration(v.Microseconds) * time.Microsecond
	if v.Months == 0 && v.Days == 0 {
		return d.String()
	}
	return fmt.Sprintf("%d mons %d days %s", v.Months, v.Days, d)
}

// InferType infers a column type from Go values. NULLs are ignored; a
// column of only NULLs is TypeUnknown. Mixed integer and float values give
// TypeFloat; any other mix gives TypeString.
func InferType(values []any) Type {
	inferred := TypeUnknown
	for _, value := range values {
		t := typeOf(value)
		if t == TypeUnknown {
			continue
		}
		inferred = widen(inferred, t)
		if inferred == TypeString {
			return TypeString
		}
	}
	return inferred
}

func typeOf(value any) Type {
	switch value.(type) {
	case nil:
		return TypeUnknown
	case int, int8, int16, int32, int64, uint8, uint16, uint32, uint64:
		return TypeInt
	case float32, float64:
		return TypeFloat
	case bool:
		return TypeBool
	case time.Time:
		return TypeTimestamp
	case []byte:
		return TypeBinary
	case map[string]any, []any:
		return TypeJSON
	default:
		return TypeString
	}
}

func widen(current, next Type) Type {
	switch {
	case current == TypeUnknown:
		return next
	case current == next:
		return current
	case (current == TypeInt && next == TypeFloat) || (current == TypeFloat && next == TypeInt):
		return TypeFloat
	case (current == TypeDate && next == TypeTimestamp) || (current == TypeTimestamp && next == TypeDate):
		return TypeTimestamp
	default:
		return TypeString
	}
}
