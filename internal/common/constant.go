package common

// SessionTokenHeaderName is the HTTP header used to carry the session
// credential token on key-server requests.
const SessionTokenHeaderName = "x-session-token"

// PrimaryCoinType is the ledger coin type used for transaction gas.
const PrimaryCoinType = "0x2::coin::PRIMARY"

// StorageCoinType is the coin type consumed by storage registration
// and certification.
const StorageCoinType = "0x2::coin::STOR"
