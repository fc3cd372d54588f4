package types

// Names of the builtin functions run by the protocol instead of a contract
const (
	BuiltinESDTTransfer            = "ESDTTransfer"
	BuiltinESDTNFTTransfer         = "ESDTNFTTransfer"
	BuiltinMultiESDTNFTTransfer    = "MultiESDTNFTTransfer"
	BuiltinESDTLocalMint           = "ESDTLocalMint"
	BuiltinESDTLocalBurn           = "ESDTLocalBurn"
	BuiltinESDTNFTCreate           = "ESDTNFTCreate"
	BuiltinESDTNFTAddQuantity      = "ESDTNFTAddQuantity"
	BuiltinESDTNFTBurn             = "ESDTNFTBurn"
	BuiltinESDTNFTUpdateAttributes = "ESDTNFTUpdateAttributes"
	BuiltinESDTNFTAddURI           = "ESDTNFTAddURI"
	BuiltinChangeOwnerAddress      = "ChangeOwnerAddress"
	BuiltinSaveKeyValue            = "SaveKeyValue"
	BuiltinClaimDeveloperRewards   = "ClaimDeveloperRewards"

	// functions of the ESDT system contract
	BuiltinIssue             = "issue"
	BuiltinIssueNonFungible  = "issueNonFungible"
	BuiltinIssueSemiFungible = "issueSemiFungible"
	BuiltinRegisterMetaESDT  = "registerMetaESDT"
	BuiltinSetSpecialRole    = "setSpecialRole"
	BuiltinUnSetSpecialRole  = "unSetSpecialRole"
	BuiltinPause             = "pause"
	BuiltinUnPause           = "unPause"
	BuiltinFreeze            = "freeze"
	BuiltinUnFreeze          = "unFreeze"
)

const (
	// ReservedStorageKeyPrefix marks storage keys owned by the protocol
	ReservedStorageKeyPrefix = "ELROND"

	// TokenRegistryKeyPrefix prefixes the token id in the storage of the ESDT system
	// contract under which the registry record of the token is kept
	TokenRegistryKeyPrefix = ReservedStorageKeyPrefix + "esdt"

	// CallbackClosureKeyPrefix prefixes the tx hash under which a contract keeps the
	// closure of its pending legacy async call
	CallbackClosureKeyPrefix = ReservedStorageKeyPrefix + "callbackClosure"
)
