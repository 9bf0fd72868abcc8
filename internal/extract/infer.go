package extract

import (
	"fmt"
	"strconv"
	"strings"
)

// BooleanAllowedValues constrains parameters extracted from boolean literals.
var BooleanAllowedValues = []string{"true", "false"}

// InferParameterType maps a literal to the parameter declaration that holds it.
// Unknown literal types fall back to a String parameter.
func InferParameterType(typ LiteralType, value any) ParameterDefinition {
	switch typ {
	case LiteralNumber:
		return ParameterDefinition{Type: ParameterTypeNumber, Default: value}
	case LiteralBoolean:
		return ParameterDefinition{
			Type:          ParameterTypeString,
			Default:       stringify(value),
			AllowedValues: append([]string(nil), BooleanAllowedValues...),
		}
	case LiteralArray:
		// Embedded commas are not escaped; CommaDelimitedList has no escape syntax.
		return ParameterDefinition{Type: ParameterTypeCommaDelimitedList, Default: stringify(value)}
	default:
		return ParameterDefinition{Type: ParameterTypeString, Default: stringify(value)}
	}
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return formatNumber(v)
	case bool:
		return strconv.FormatBool(v)
	case []any:
		parts := make([]string, len(v))
		for i, el := range v {
			parts[i] = stringify(el)
		}
		return strings.Join(parts, ",")
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
