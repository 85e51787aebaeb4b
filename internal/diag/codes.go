package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Symbol completion
	CmpInfo            Code = 1000
	CmpClassNotFound   Code = 1001
	CmpCyclic          Code = 1002
	CmpBadSignature    Code = 1003
	CmpPackageNotFound Code = 1004
	CmpCyclicInherit   Code = 1005

	// Type relations
	TypInfo            Code = 2000
	TypNoGLB           Code = 2001
	TypNoLUB           Code = 2002
	TypCaptureArity    Code = 2003
	TypAdaptMismatch   Code = 2004
	TypNotAClass       Code = 2005
	TypBadBoundKind    Code = 2006
	TypSubstArity      Code = 2007
	TypNotParameterize Code = 2008
	TypNoUniqueMinimal Code = 2009
	TypNoUniqueMaximal Code = 2010

	// Functional interfaces
	FnInfo               Code = 3000
	FnNotAFunctionalIntf Code = 3001
	FnNoAbstracts        Code = 3002
	FnIncompatAbstracts  Code = 3003
	FnIncompatDescs      Code = 3004
	FnIsAnnotation       Code = 3005

	// Annotations
	AnnInfo               Code = 4000
	AnnNoContainer        Code = 4001
	AnnInvalidContainer   Code = 4002
	AnnContainerRetention Code = 4003
	AnnUnknownElement     Code = 4004
	AnnDuplicate          Code = 4005

	// Class path descriptors
	ClpInfo           Code = 5000
	ClpDuplicateClass Code = 5001
	ClpBadSignature   Code = 5002
	ClpUnknownFlag    Code = 5003
	ClpReadError      Code = 5004
	ClpSchemaMismatch Code = 5005
	ClpBadValue       Code = 5006

	// Configuration
	CfgInfo       Code = 6000
	CfgInvalid    Code = 6001
	CfgUnknownKey Code = 6002

	// Operators
	OpInfo      Code = 7000
	OpNotFound  Code = 7001
	OpAmbiguous Code = 7002
)

var (
	codeDescription = map[Code]string{
		UnknownCode:           "Unknown error",
		CmpInfo:               "Completion information",
		CmpClassNotFound:      "class not found",
		CmpCyclic:             "cyclic completion",
		CmpBadSignature:       "bad signature in class descriptor",
		CmpPackageNotFound:    "package not found",
		CmpCyclicInherit:      "cyclic inheritance",
		TypInfo:               "Type information",
		TypNoGLB:              "no greatest lower bound: more than one class",
		TypNoLUB:              "no least upper bound",
		TypCaptureArity:       "capture on mismatched type arguments",
		TypAdaptMismatch:      "incompatible type adaptation",
		TypNotAClass:          "not a class type",
		TypBadBoundKind:       "bad wildcard bound kind",
		TypSubstArity:         "substitution lists differ in length",
		TypNotParameterize:    "type is not parameterized",
		TypNoUniqueMinimal:    "no unique minimal instance exists",
		TypNoUniqueMaximal:    "no unique maximal instance exists",
		FnInfo:                "Functional interface information",
		FnNotAFunctionalIntf:  "not a functional interface",
		FnNoAbstracts:         "no abstract method found in interface",
		FnIncompatAbstracts:   "multiple non-overriding abstract methods found in interface",
		FnIncompatDescs:       "incompatible function descriptors found in interface",
		FnIsAnnotation:        "annotation types are not functional interfaces",
		AnnInfo:               "Annotation information",
		AnnNoContainer:        "duplicate annotation without a repeatable container",
		AnnInvalidContainer:   "invalid repeatable container annotation",
		AnnContainerRetention: "container retention shorter than the repeatable annotation",
		AnnUnknownElement:     "unknown annotation element",
		AnnDuplicate:          "duplicate annotation",
		ClpInfo:               "Class path information",
		ClpDuplicateClass:     "duplicate class declaration",
		ClpBadSignature:       "malformed type signature",
		ClpUnknownFlag:        "unknown flag",
		ClpReadError:          "cannot read class descriptors",
		ClpSchemaMismatch:     "class pack schema mismatch",
		ClpBadValue:           "bad annotation value",
		CfgInfo:               "Configuration information",
		CfgInvalid:            "invalid configuration",
		CfgUnknownKey:         "unknown configuration key",
		OpInfo:                "Operator information",
		OpNotFound:            "operator cannot be applied",
		OpAmbiguous:           "ambiguous operator",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("CMP%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("TYP%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("FNI%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("ANN%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("CLP%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("CFG%04d", ic)
	case ic >= 7000 && ic < 8000:
		return fmt.Sprintf("OPR%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
