// Package cfn holds the CloudFormation template vocabulary shared by the
// syntax adapters and the refactoring engine.
package cfn

import "strings"

// Top-level template sections.
const (
	SectionFormatVersion = "AWSTemplateFormatVersion"
	SectionDescription   = "Description"
	SectionMetadata      = "Metadata"
	SectionTransform     = "Transform"
	SectionParameters    = "Parameters"
	SectionRules         = "Rules"
	SectionMappings      = "Mappings"
	SectionConditions    = "Conditions"
	SectionResources     = "Resources"
	SectionOutputs       = "Outputs"
)

// HeaderSections are the sections that conventionally precede Parameters.
var HeaderSections = map[string]bool{
	SectionFormatVersion: true,
	SectionDescription:   true,
	SectionMetadata:      true,
	SectionTransform:     true,
}

// ExtractableSections are the sections whose values may reference parameters.
var ExtractableSections = []string{SectionResources, SectionOutputs}

// IsExtractableSection reports whether values under section can be replaced by a Ref.
func IsExtractableSection(section string) bool {
	return section == SectionResources || section == SectionOutputs
}

// Intrinsic function names in their long (JSON key) form.
const (
	FnRef         = "Ref"
	FnCondition   = "Condition"
	FnGetAtt      = "Fn::GetAtt"
	FnBase64      = "Fn::Base64"
	FnCidr        = "Fn::Cidr"
	FnFindInMap   = "Fn::FindInMap"
	FnGetAZs      = "Fn::GetAZs"
	FnImportValue = "Fn::ImportValue"
	FnJoin        = "Fn::Join"
	FnSelect      = "Fn::Select"
	FnSplit       = "Fn::Split"
	FnSub         = "Fn::Sub"
	FnTransform   = "Fn::Transform"
	FnAnd         = "Fn::And"
	FnEquals      = "Fn::Equals"
	FnIf          = "Fn::If"
	FnNot         = "Fn::Not"
	FnOr          = "Fn::Or"
	FnLength      = "Fn::Length"
	FnToJSON      = "Fn::ToJsonString"
	FnForEach     = "Fn::ForEach"
)

var intrinsicFunctions = map[string]bool{
	FnRef: true, FnCondition: true, FnGetAtt: true, FnBase64: true, FnCidr: true,
	FnFindInMap: true, FnGetAZs: true, FnImportValue: true, FnJoin: true, FnSelect: true,
	FnSplit: true, FnSub: true, FnTransform: true, FnAnd: true, FnEquals: true, FnIf: true,
	FnNot: true, FnOr: true, FnLength: true, FnToJSON: true, FnForEach: true,
}

// IsIntrinsicFunction reports whether key names an intrinsic function in long form.
// The bare "GetAtt" spelling is accepted as well.
func IsIntrinsicFunction(key string) bool {
	return intrinsicFunctions[key] || key == "GetAtt"
}

// TagFunction maps a YAML short-form tag such as "!Sub" to the long function
// name. The second result is false for tags that are not intrinsic functions.
// "!Ref" and "!Condition" map to "Ref" and "Condition"; every other tag maps to "Fn::<Name>".
func TagFunction(tag string) (string, bool) {
	name, ok := strings.CutPrefix(tag, "!")
	if !ok || name == "" {
		return "", false
	}
	switch name {
	case FnRef, FnCondition:
		return name, true
	}
	long := "Fn::" + name
	if intrinsicFunctions[long] {
		return long, true
	}
	return "", false
}

// ReferenceKind classifies constructs that point at another template entity.
type ReferenceKind int

const (
	ReferenceNone ReferenceKind = iota
	ReferenceRef
	ReferenceGetAtt
	ReferenceCondition
)

func (k ReferenceKind) String() string {
	switch k {
	case ReferenceRef:
		return "Ref"
	case ReferenceGetAtt:
		return "GetAtt"
	case ReferenceCondition:
		return "Condition"
	default:
		return "None"
	}
}

// ReferenceKindOf returns the reference kind of a function name, with or
// without the "Fn::" prefix. Only Ref, GetAtt and Condition are references;
// Sub, Join and the other intrinsics are not.
func ReferenceKindOf(name string) ReferenceKind {
	switch strings.TrimPrefix(name, "Fn::") {
	case "Ref":
		return ReferenceRef
	case "GetAtt":
		return ReferenceGetAtt
	case "Condition":
		return ReferenceCondition
	default:
		return ReferenceNone
	}
}
