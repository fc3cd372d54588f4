package gas

// Schedule is the frozen table of costs. Every cost has a fixed field so that
// charging never looks a name up at run time.
type Schedule struct {
	BaseOperationCost    BaseOperationCost
	BaseOpsAPICost       BaseOpsAPICost
	BigIntAPICost        BigIntAPICost
	BigFloatAPICost      BigFloatAPICost
	ManagedBufferAPICost ManagedBufferAPICost
	ManagedMapAPICost    ManagedMapAPICost
	CryptoAPICost        CryptoAPICost
	BuiltInCost          BuiltInCost
	WASMOpcodeCost       WASMOpcodeCost
}

type BaseOperationCost struct {
	StorePerByte    uint64
	ReleasePerByte  uint64
	DataCopyPerByte uint64
	PersistPerByte  uint64
	CompilePerByte  uint64
	GetCode         uint64
	TxBase          uint64
	TxDataPerByte   uint64

	// ReturnPathReserve is kept by a parent when it hands gas to a nested call
	ReturnPathReserve uint64
}

type BaseOpsAPICost struct {
	GetSCAddress            uint64
	GetOwnerAddress         uint64
	IsSmartContract         uint64
	GetShardOfAddress       uint64
	GetExternalBalance      uint64
	GetBlockHash            uint64
	TransferValue           uint64
	GetArgument             uint64
	GetFunction             uint64
	GetNumArguments         uint64
	StorageStore            uint64
	StorageLoad             uint64
	GetCaller               uint64
	GetCallValue            uint64
	Log                     uint64
	Finish                  uint64
	SignalError             uint64
	GetBlockTimeStamp       uint64
	GetGasLeft              uint64
	Int64GetArgument        uint64
	Int64StorageStore       uint64
	Int64StorageLoad        uint64
	Int64Finish             uint64
	GetStateRootHash        uint64
	GetBlockNonce           uint64
	GetBlockEpoch           uint64
	GetBlockRound           uint64
	GetBlockRandomSeed      uint64
	ExecuteOnSameContext    uint64
	ExecuteOnDestContext    uint64
	ExecuteReadOnly         uint64
	AsyncCallStep           uint64
	AsyncCallbackGasLock    uint64
	CreateAsyncCall         uint64
	SetAsyncCallback        uint64
	CreateContract          uint64
	UpgradeContract         uint64
	GetReturnData           uint64
	GetNumReturnData        uint64
	GetReturnDataSize       uint64
	CleanReturnData         uint64
	DeleteFromReturnData    uint64
	GetOriginalTxHash       uint64
	GetCurrentTxHash        uint64
	GetPrevTxHash           uint64
	GetCodeMetadata         uint64
	IsBuiltinFunction       uint64
	GetCallbackClosure      uint64
	GetBackTransfers        uint64
	GetNumESDTTransfers     uint64
	GetESDTBalance          uint64
	GetESDTTokenData        uint64
	GetESDTLocalRoles       uint64
	ValidateTokenIdentifier uint64
	GetCurrentESDTNFTNonce  uint64
	IsESDTFrozen            uint64
	IsESDTPaused            uint64
	IsESDTLimitedTransfer   uint64
}

type BigIntAPICost struct {
	BigIntNew                  uint64
	BigIntUnsignedByteLength   uint64
	BigIntSignedByteLength     uint64
	BigIntGetUnsignedBytes     uint64
	BigIntGetSignedBytes       uint64
	BigIntSetUnsignedBytes     uint64
	BigIntSetSignedBytes       uint64
	BigIntIsInt64              uint64
	BigIntGetInt64             uint64
	BigIntSetInt64             uint64
	BigIntAdd                  uint64
	BigIntSub                  uint64
	BigIntMul                  uint64
	BigIntTDiv                 uint64
	BigIntTMod                 uint64
	BigIntEDiv                 uint64
	BigIntEMod                 uint64
	BigIntSqrt                 uint64
	BigIntPow                  uint64
	BigIntLog                  uint64
	BigIntAbs                  uint64
	BigIntNeg                  uint64
	BigIntSign                 uint64
	BigIntCmp                  uint64
	BigIntNot                  uint64
	BigIntAnd                  uint64
	BigIntOr                   uint64
	BigIntXor                  uint64
	BigIntShr                  uint64
	BigIntShl                  uint64
	BigIntFinishUnsigned       uint64
	BigIntFinishSigned         uint64
	BigIntStorageLoadUnsigned  uint64
	BigIntStorageStoreUnsigned uint64
	BigIntGetUnsignedArgument  uint64
	BigIntGetSignedArgument    uint64
	BigIntGetCallValue         uint64
	BigIntGetExternalBalance   uint64
	BigIntToString             uint64
	CopyPerByteForTooBig       uint64
}

type BigFloatAPICost struct {
	BigFloatNewFromParts uint64
	BigFloatAdd          uint64
	BigFloatSub          uint64
	BigFloatMul          uint64
	BigFloatDiv          uint64
	BigFloatTruncate     uint64
	BigFloatNeg          uint64
	BigFloatClone        uint64
	BigFloatCmp          uint64
	BigFloatAbs          uint64
	BigFloatSqrt         uint64
	BigFloatPow          uint64
	BigFloatFloor        uint64
	BigFloatCeil         uint64
	BigFloatIsInt        uint64
	BigFloatSetBigInt    uint64
	BigFloatSetInt64     uint64
	BigFloatGetConst     uint64
	BigFloatSign         uint64
	BigFloatLn           uint64
	BigFloatLog2         uint64
	BigFloatExp          uint64
}

type ManagedBufferAPICost struct {
	MBufferNew                uint64
	MBufferNewFromBytes       uint64
	MBufferGetLength          uint64
	MBufferGetBytes           uint64
	MBufferGetByteSlice       uint64
	MBufferCopyByteSlice      uint64
	MBufferSetBytes           uint64
	MBufferSetByteSlice       uint64
	MBufferAppend             uint64
	MBufferAppendBytes        uint64
	MBufferEq                 uint64
	MBufferToBigIntUnsigned   uint64
	MBufferToBigIntSigned     uint64
	MBufferFromBigIntUnsigned uint64
	MBufferFromBigIntSigned   uint64
	MBufferToBigFloat         uint64
	MBufferFromBigFloat       uint64
	MBufferStorageStore       uint64
	MBufferStorageLoad        uint64
	MBufferGetArgument        uint64
	MBufferFinish             uint64
	MBufferSetRandom          uint64
	MBufferToHex              uint64
}

type ManagedMapAPICost struct {
	ManagedMapNew      uint64
	ManagedMapPut      uint64
	ManagedMapGet      uint64
	ManagedMapRemove   uint64
	ManagedMapContains uint64
}

type CryptoAPICost struct {
	SHA256               uint64
	Keccak256            uint64
	Ripemd160            uint64
	VerifyBLS            uint64
	VerifyEd25519        uint64
	VerifySecp256k1      uint64
	EncodeDERSig         uint64
	AddECC               uint64
	DoubleECC            uint64
	IsOnCurveECC         uint64
	ScalarMultECC        uint64
	MarshalECC           uint64
	MarshalCompressECC   uint64
	UnmarshalECC         uint64
	UnmarshalCompressECC uint64
	GenerateKeyECC       uint64
	EllipticCurveNew     uint64
}

type BuiltInCost struct {
	ChangeOwnerAddress      uint64
	ClaimDeveloperRewards   uint64
	SaveKeyValue            uint64
	ESDTTransfer            uint64
	ESDTLocalMint           uint64
	ESDTLocalBurn           uint64
	ESDTNFTCreate           uint64
	ESDTNFTAddQuantity      uint64
	ESDTNFTBurn             uint64
	ESDTNFTTransfer         uint64
	ESDTNFTUpdateAttributes uint64
	ESDTNFTAddURI           uint64
	MultiESDTNFTTransfer    uint64
	IssueToken              uint64
	SetSpecialRole          uint64
	UnSetSpecialRole        uint64
	Pause                   uint64
	Freeze                  uint64
}

// WASMOpcodeCost prices instructions by class
type WASMOpcodeCost struct {
	Control      uint64
	Call         uint64
	CallIndirect uint64
	Variable     uint64
	MemoryLoad   uint64
	MemoryStore  uint64
	MemoryGrow   uint64
	MemorySize   uint64
	Const        uint64
	Numeric      uint64
	Division     uint64
	Conversion   uint64
	Parametric   uint64
	BulkMemory   uint64
}

// DefaultSchedule returns the costs used when no schedule file is given
func DefaultSchedule() *Schedule {
	return &Schedule{
		BaseOperationCost: BaseOperationCost{
			StorePerByte:      10000,
			ReleasePerByte:    1000,
			DataCopyPerByte:   50,
			PersistPerByte:    1000,
			CompilePerByte:    300,
			GetCode:           1000000,
			TxBase:            50000,
			TxDataPerByte:     1500,
			ReturnPathReserve: 10000,
		},
		BaseOpsAPICost: BaseOpsAPICost{
			GetSCAddress:            100,
			GetOwnerAddress:         5000,
			IsSmartContract:         5000,
			GetShardOfAddress:       5000,
			GetExternalBalance:      7000,
			GetBlockHash:            10000,
			TransferValue:           100000,
			GetArgument:             1000,
			GetFunction:             1000,
			GetNumArguments:         100,
			StorageStore:            75000,
			StorageLoad:             50000,
			GetCaller:               100,
			GetCallValue:            100,
			Log:                     3750,
			Finish:                  1,
			SignalError:             1,
			GetBlockTimeStamp:       10000,
			GetGasLeft:              100,
			Int64GetArgument:        1000,
			Int64StorageStore:       75000,
			Int64StorageLoad:        50000,
			Int64Finish:             1000,
			GetStateRootHash:        10000,
			GetBlockNonce:           10000,
			GetBlockEpoch:           10000,
			GetBlockRound:           10000,
			GetBlockRandomSeed:      10000,
			ExecuteOnSameContext:    100000,
			ExecuteOnDestContext:    100000,
			ExecuteReadOnly:         160000,
			AsyncCallStep:           100000,
			AsyncCallbackGasLock:    4000000,
			CreateAsyncCall:         200000,
			SetAsyncCallback:        100000,
			CreateContract:          300000,
			UpgradeContract:         300000,
			GetReturnData:           100,
			GetNumReturnData:        100,
			GetReturnDataSize:       100,
			CleanReturnData:         100,
			DeleteFromReturnData:    100,
			GetOriginalTxHash:       10000,
			GetCurrentTxHash:        10000,
			GetPrevTxHash:           10000,
			GetCodeMetadata:         10000,
			IsBuiltinFunction:       10000,
			GetCallbackClosure:      10000,
			GetBackTransfers:        10000,
			GetNumESDTTransfers:     100,
			GetESDTBalance:          50000,
			GetESDTTokenData:        50000,
			GetESDTLocalRoles:       50000,
			ValidateTokenIdentifier: 1000,
			GetCurrentESDTNFTNonce:  50000,
			IsESDTFrozen:            50000,
			IsESDTPaused:            50000,
			IsESDTLimitedTransfer:   50000,
		},
		BigIntAPICost: BigIntAPICost{
			BigIntNew:                  2000,
			BigIntUnsignedByteLength:   2000,
			BigIntSignedByteLength:     2000,
			BigIntGetUnsignedBytes:     2000,
			BigIntGetSignedBytes:       2000,
			BigIntSetUnsignedBytes:     2000,
			BigIntSetSignedBytes:       2000,
			BigIntIsInt64:              2000,
			BigIntGetInt64:             2000,
			BigIntSetInt64:             2000,
			BigIntAdd:                  2000,
			BigIntSub:                  2000,
			BigIntMul:                  6000,
			BigIntTDiv:                 6000,
			BigIntTMod:                 6000,
			BigIntEDiv:                 6000,
			BigIntEMod:                 6000,
			BigIntSqrt:                 6000,
			BigIntPow:                  6000,
			BigIntLog:                  6000,
			BigIntAbs:                  2000,
			BigIntNeg:                  2000,
			BigIntSign:                 2000,
			BigIntCmp:                  2000,
			BigIntNot:                  2000,
			BigIntAnd:                  2000,
			BigIntOr:                   2000,
			BigIntXor:                  2000,
			BigIntShr:                  2000,
			BigIntShl:                  2000,
			BigIntFinishUnsigned:       1000,
			BigIntFinishSigned:         1000,
			BigIntStorageLoadUnsigned:  50000,
			BigIntStorageStoreUnsigned: 75000,
			BigIntGetUnsignedArgument:  1000,
			BigIntGetSignedArgument:    1000,
			BigIntGetCallValue:         1000,
			BigIntGetExternalBalance:   10000,
			BigIntToString:             1000,
			CopyPerByteForTooBig:       1000,
		},
		BigFloatAPICost: BigFloatAPICost{
			BigFloatNewFromParts: 3000,
			BigFloatAdd:          7000,
			BigFloatSub:          7000,
			BigFloatMul:          7000,
			BigFloatDiv:          7000,
			BigFloatTruncate:     5000,
			BigFloatNeg:          5000,
			BigFloatClone:        5000,
			BigFloatCmp:          4000,
			BigFloatAbs:          5000,
			BigFloatSqrt:         7000,
			BigFloatPow:          10000,
			BigFloatFloor:        5000,
			BigFloatCeil:         5000,
			BigFloatIsInt:        3000,
			BigFloatSetBigInt:    3000,
			BigFloatSetInt64:     1000,
			BigFloatGetConst:     1000,
			BigFloatSign:         1000,
			BigFloatLn:           20000,
			BigFloatLog2:         20000,
			BigFloatExp:          20000,
		},
		ManagedBufferAPICost: ManagedBufferAPICost{
			MBufferNew:                2000,
			MBufferNewFromBytes:       2000,
			MBufferGetLength:          2000,
			MBufferGetBytes:           2000,
			MBufferGetByteSlice:       2000,
			MBufferCopyByteSlice:      2000,
			MBufferSetBytes:           2000,
			MBufferSetByteSlice:       2000,
			MBufferAppend:             2000,
			MBufferAppendBytes:        2000,
			MBufferEq:                 2000,
			MBufferToBigIntUnsigned:   2000,
			MBufferToBigIntSigned:     5000,
			MBufferFromBigIntUnsigned: 2000,
			MBufferFromBigIntSigned:   5000,
			MBufferToBigFloat:         5000,
			MBufferFromBigFloat:       5000,
			MBufferStorageStore:       75000,
			MBufferStorageLoad:        50000,
			MBufferGetArgument:        1000,
			MBufferFinish:             1000,
			MBufferSetRandom:          6000,
			MBufferToHex:              2000,
		},
		ManagedMapAPICost: ManagedMapAPICost{
			ManagedMapNew:      10000,
			ManagedMapPut:      10000,
			ManagedMapGet:      10000,
			ManagedMapRemove:   10000,
			ManagedMapContains: 10000,
		},
		CryptoAPICost: CryptoAPICost{
			SHA256:               1000000,
			Keccak256:            1000000,
			Ripemd160:            1000000,
			VerifyBLS:            5000000,
			VerifyEd25519:        2000000,
			VerifySecp256k1:      2000000,
			EncodeDERSig:         10000000,
			AddECC:               75000,
			DoubleECC:            65000,
			IsOnCurveECC:         10000,
			ScalarMultECC:        400000,
			MarshalECC:           13000,
			MarshalCompressECC:   15000,
			UnmarshalECC:         20000,
			UnmarshalCompressECC: 270000,
			GenerateKeyECC:       7000000,
			EllipticCurveNew:     10000,
		},
		BuiltInCost: BuiltInCost{
			ChangeOwnerAddress:      5000000,
			ClaimDeveloperRewards:   5000000,
			SaveKeyValue:            100000,
			ESDTTransfer:            200000,
			ESDTLocalMint:           50000,
			ESDTLocalBurn:           50000,
			ESDTNFTCreate:           150000,
			ESDTNFTAddQuantity:      50000,
			ESDTNFTBurn:             50000,
			ESDTNFTTransfer:         200000,
			ESDTNFTUpdateAttributes: 50000,
			ESDTNFTAddURI:           50000,
			MultiESDTNFTTransfer:    200000,
			IssueToken:              50000000,
			SetSpecialRole:          50000000,
			UnSetSpecialRole:        50000000,
			Pause:                   50000000,
			Freeze:                  50000000,
		},
		WASMOpcodeCost: WASMOpcodeCost{
			Control:      1,
			Call:         5,
			CallIndirect: 10,
			Variable:     1,
			MemoryLoad:   3,
			MemoryStore:  3,
			MemoryGrow:   1000,
			MemorySize:   2,
			Const:        1,
			Numeric:      1,
			Division:     4,
			Conversion:   1,
			Parametric:   1,
			BulkMemory:   20,
		},
	}
}
