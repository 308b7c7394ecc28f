package types

// TokenAttributes is the semantic classification attached to a markup: a
// kind enumerant in the low bits plus decl/def flags in the high bits. The
// kind set is closed and mirrors the Pygments token taxonomy so the
// renderer can emit familiar CSS classes.
type TokenAttributes uint32

const (
	None TokenAttributes = iota
	Attr
	Cmmt
	Constant
	Func
	Kw
	KwDecl
	Lbl
	Lit
	LitChr
	LitKw
	LitNum
	LitNumFlt
	LitNumIntBin
	LitNumIntDecLong
	LitNumIntHex
	LitNumIntOct
	LitStr
	Namesp
	Op
	OpWord
	Pre
	PreIncludeFile
	Punct
	Ty
	TyBuiltin
	VarGlobal
	VarLocal
	VarNonstaticMember
	VarStaticMember

	kindBits = 10
	maskKind = (1 << kindBits) - 1

	FlagDecl TokenAttributes = 1 << kindBits
	FlagDef  TokenAttributes = 1 << (kindBits + 1)
)

// Kind strips the decl/def flags, returning just the enumerant.
func (a TokenAttributes) Kind() TokenAttributes { return a & maskKind }

// HasDecl reports whether the declaration flag is set.
func (a TokenAttributes) HasDecl() bool { return a&FlagDecl != 0 }

// HasDef reports whether the definition flag is set.
func (a TokenAttributes) HasDef() bool { return a&FlagDef != 0 }

// cssClasses follows the Pygments scheme named in the external-interfaces
// design: the kind maps to a short class, and decl/def are orthogonal
// prefixes.
var cssClasses = map[TokenAttributes]string{
	Attr:               "nd",
	Cmmt:               "c",
	Constant:           "no",
	Func:               "nf",
	Kw:                 "k",
	KwDecl:             "kd",
	Lbl:                "nl",
	Lit:                "l",
	LitChr:             "sc",
	LitKw:              "kc",
	LitNum:             "mi",
	LitNumFlt:          "mf",
	LitNumIntBin:       "mb",
	LitNumIntDecLong:   "ml",
	LitNumIntHex:       "mh",
	LitNumIntOct:       "mo",
	LitStr:             "s",
	Namesp:             "nn",
	Op:                 "o",
	OpWord:             "ow",
	Pre:                "cp",
	PreIncludeFile:     "cpf",
	Punct:              "p",
	Ty:                 "nc",
	TyBuiltin:          "kt",
	VarGlobal:          "vg",
	VarLocal:           "nv",
	VarNonstaticMember: "vi",
	VarStaticMember:    "vc",
}

// CSSClass renders the full class attribute value for this attribute set,
// e.g. "def decl nf" for a function definition-and-declaration token.
// Returns "" for None with no flags, meaning no span/class should be
// emitted at all.
func (a TokenAttributes) CSSClass() string {
	kind := a.Kind()
	cls, ok := cssClasses[kind]
	if !ok {
		return ""
	}
	out := cls
	if a.HasDecl() {
		out = "decl " + out
	}
	if a.HasDef() {
		out = "def " + out
	}
	return out
}

// Empty reports whether this attribute set carries no classification at
// all (kind None and neither flag set).
func (a TokenAttributes) Empty() bool {
	return a.Kind() == None && !a.HasDecl() && !a.HasDef()
}
