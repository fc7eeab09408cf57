package services

import (
	"fmt"
	"strings"

	"modeldoc/internal/models"
)

const (
	dateType       = "Carbon"
	immutableDate  = "CarbonImmutable"
	nullablePrefix = "null|"
)

// UnexpectedTypeError is returned for a raw database type with no mapping.
type UnexpectedTypeError struct {
	Model string
	Type  string
}

func (e *UnexpectedTypeError) Error() string {
	return fmt.Sprintf("unexpected type %s in model %s", e.Type, e.Model)
}

// UnexpectedCastError is returned for a cast with no mapping.
type UnexpectedCastError struct {
	Model string
	Cast  string
}

func (e *UnexpectedCastError) Error() string {
	return fmt.Sprintf("unexpected cast %s in model %s", e.Cast, e.Model)
}

// Advisor receives non-fatal suggestions raised while resolving types.
type Advisor interface {
	Warn(msg string, keyvals ...any)
}

// EnumChecker reports whether a class name is an enum.
type EnumChecker interface {
	IsEnum(fqcn string) bool
}

var castTypes = map[string]string{
	"encrypted":          "string",
	"hashed":             "string",
	"json":               "mixed",
	"array":              "array<string, mixed>",
	"date":               dateType,
	"datetime":           dateType,
	"collection":         "Collection<string, mixed>",
	"string":             "string",
	"int":                "int",
	"float":              "float",
	"boolean":            "boolean",
	"bool":               "bool",
	"integer":            "int",
	"real":               "float",
	"double":             "float",
	"decimal":            "string",
	"timestamp":          "int",
	"object":             "object",
	"immutable_date":     immutableDate,
	"immutable_datetime": immutableDate,
}

// uncastTypes are raw types that deserve an explicit cast, with the cast to
// suggest.
var uncastTypes = map[string]string{
	"json":        "json",
	"jsonb":       "json",
	"date":        "date",
	"datetime":    "datetime",
	"timestamp":   "datetime",
	"timestamptz": "datetime",
}

var rawTypes = map[string]string{
	"varchar":    "string",
	"text":       "string",
	"uuid":       "string",
	"char":       "string",
	"bpchar":     "string",
	"citext":     "string",
	"tinytext":   "string",
	"mediumtext": "string",
	"longtext":   "string",
	"enum":       "string",
	"int2":       "integer",
	"int4":       "integer",
	"int8":       "integer",
	"int":        "integer",
	"integer":    "integer",
	"smallint":   "integer",
	"mediumint":  "integer",
	"tinyint":    "integer",
	"bigint":     "integer",
	"bool":       "integer",
	"float4":     "float",
	"float8":     "float",
	"float":      "float",
	"real":       "float",
	"numeric":    "float",
	"decimal":    "float",
	"double":     "float",
}

// TypeResolver maps a column of a model to a doc type expression.
type TypeResolver struct {
	enums     EnumChecker
	advisor   Advisor
	namespace string
}

// NewTypeResolver creates a resolver. Enum casts living under namespace are
// written relative to it; other enums are written fully qualified.
func NewTypeResolver(enums EnumChecker, advisor Advisor, namespace string) *TypeResolver {
	return &TypeResolver{
		enums:     enums,
		advisor:   advisor,
		namespace: strings.Trim(namespace, `\`),
	}
}

// Resolve returns the type of column in model, wrapped as null|T for
// nullable columns.
func (r *TypeResolver) Resolve(column models.Column, model *models.Model) (string, error) {
	typ, err := r.resolveBase(column, model)
	if err != nil {
		return "", err
	}
	if column.Nullable {
		return nullablePrefix + typ, nil
	}
	return typ, nil
}

func (r *TypeResolver) resolveBase(column models.Column, model *models.Model) (string, error) {
	if model.IsTimestampColumn(column.Name) {
		return dateType, nil
	}

	if cast, ok := model.Casts[column.Name]; ok {
		return r.resolveCast(cast, model)
	}

	if suggested, ok := uncastTypes[column.DataType]; ok {
		r.advisor.Warn(fmt.Sprintf("Consider to use cast %s for column %s in model %s", suggested, column.Name, model.FQCN),
			"model", model.FQCN, "column", column.Name, "type", column.DataType)
		return "string", nil
	}

	if typ, ok := rawTypes[column.DataType]; ok {
		return typ, nil
	}
	return "", &UnexpectedTypeError{Model: model.FQCN, Type: column.DataType}
}

func (r *TypeResolver) resolveCast(cast string, model *models.Model) (string, error) {
	if r.enums != nil && r.enums.IsEnum(cast) {
		fqcn := strings.TrimPrefix(cast, `\`)
		if r.namespace != "" && strings.HasPrefix(fqcn, r.namespace+`\`) {
			return strings.TrimPrefix(fqcn, r.namespace+`\`), nil
		}
		return `\` + fqcn, nil
	}

	kind, _, _ := strings.Cut(cast, ":")
	if typ, ok := castTypes[kind]; ok {
		return typ, nil
	}
	return "", &UnexpectedCastError{Model: model.FQCN, Cast: cast}
}
