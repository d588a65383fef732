package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Type registry
	TypeInfo        Code = 1000
	TypeInvalidSpec Code = 1001

	// Construction (value model, module, builder)
	BuildInfo                  Code = 2000
	BuildTypeMismatch          Code = 2001
	BuildDuplicateSymbol       Code = 2002
	BuildUseAfterDispose       Code = 2003
	BuildIllTypedOperation     Code = 2004
	BuildInvalidInsertionPoint Code = 2005
	BuildCrossContext          Code = 2006

	// Verification. 3001 is retired: a function without blocks is a
	// declaration and never reaches the verifier as a definition.
	VerifyInfo                Code = 3000
	VerifyUnterminatedBlock   Code = 3002
	VerifyMultipleTerminators Code = 3003
	VerifyBadBranchTarget     Code = 3004
	VerifyUnreachableBlock    Code = 3005
	VerifyUseNotDominated     Code = 3006
	VerifyPhiMissingPred      Code = 3007
	VerifyPhiExtraPred        Code = 3008
	VerifyPhiDuplicatePred    Code = 3009
	VerifyPhiNotGrouped       Code = 3010
	VerifyForeignType         Code = 3011
	VerifyForeignValue        Code = 3012
	VerifyReturnMismatch      Code = 3013
)

func (c Code) String() string {
	return fmt.Sprintf("ANV%04d", uint16(c))
}
