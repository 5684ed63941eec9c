package schema

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
)

// Table names.
const (
	TableMetadata         = "metadata"
	TableOriginalXML      = "original_xml"
	TableMemoryMaps       = "memoryMaps"
	TableAddressBlocks    = "addressBlocks"
	TableRegisters        = "registers"
	TableFields           = "fields"
	TableEnumerations     = "enumerations"
	TableBusInterfaces    = "busInterfaces"
	TablePorts            = "ports"
	TableParameters       = "parameters"
	TableVendorExtensions = "vendorExtensions"
)

// Foreign key columns.
const (
	ColMetadataID     = "metadata_id"
	ColMemoryMapID    = "memoryMap_id"
	ColAddressBlockID = "addressBlock_id"
	ColRegisterID     = "register_id"
	ColFieldID        = "field_id"
)

// Columns shared by several tables.
const (
	ColName        = "name"
	ColDescription = "description"
	ColDisplayName = "displayName"
	ColAccess      = "access"
	ColResetValue  = "resetValue"
	ColResetMask   = "resetMask"
	ColValue       = "value"
	ColUsage       = "usage"
	ColRand        = "rand"
	ColVolatile    = "volatile"
)

// metadata columns.
const (
	ColVendor        = "vendor"
	ColLibrary       = "library"
	ColVersion       = "version"
	ColNamespace     = "namespace"
	ColSchemaVersion = "schemaVersion"
	ColCreated       = "created"
	ColSourceFile    = "sourceFile"
	ColChecksum      = "checksum"
)

// memoryMaps and addressBlocks columns.
const (
	ColAddressUnitBits = "addressUnitBits"
	ColEndianness      = "endianness"
	ColBaseAddress     = "baseAddress"
	ColRange           = "range"
	ColWidth           = "width"
)

// registers columns.
const (
	ColAddressOffset = "addressOffset"
	ColSize          = "size"
	ColDim           = "dim"
)

// fields columns.
const (
	ColBitOffset              = "bitOffset"
	ColBitWidth               = "bitWidth"
	ColIsVolatile             = "isVolatile"
	ColIsReserved             = "isReserved"
	ColIndividuallyAccessible = "individuallyAccessible"
	ColMirror                 = "mirror"
	ColModifiedWriteValue     = "modifiedWriteValue"
	ColReadAction             = "readAction"
	ColTestable               = "testable"
)

// Access tokens accepted by the access CHECK constraints.
const (
	AccessReadOnly       = "read-only"
	AccessWriteOnly      = "write-only"
	AccessReadWrite      = "read-write"
	AccessWriteOnce      = "writeOnce"
	AccessReadWriteOnce  = "read-writeOnce"
	NamespaceSpirit      = "spirit"
	NamespaceIPXACT      = "ipxact"
	DefaultRegisterWidth = 32
)

// AccessTokens lists every access value the schema accepts.
var AccessTokens = []string{
	AccessReadOnly,
	AccessWriteOnly,
	AccessReadWrite,
	AccessWriteOnce,
	AccessReadWriteOnce,
}

// Tables lists every table in creation order. Children follow their parents.
var Tables = []string{
	TableMetadata,
	TableOriginalXML,
	TableMemoryMaps,
	TableAddressBlocks,
	TableRegisters,
	TableFields,
	TableEnumerations,
	TableBusInterfaces,
	TablePorts,
	TableParameters,
	TableVendorExtensions,
}

// DDL creates the complete register description schema. All statements are
// idempotent.
const DDL = `
CREATE TABLE IF NOT EXISTS metadata (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    vendor        TEXT NOT NULL,
    library       TEXT NOT NULL,
    name          TEXT NOT NULL,
    version       TEXT NOT NULL,
    description   TEXT,
    namespace     TEXT NOT NULL DEFAULT 'ipxact' CHECK (namespace IN ('spirit', 'ipxact')),
    schemaVersion TEXT,
    created       TEXT,
    sourceFile    TEXT,
    checksum      TEXT,
    UNIQUE (vendor, library, name, version)
);

CREATE TABLE IF NOT EXISTS original_xml (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    metadata_id   INTEGER NOT NULL REFERENCES metadata(id) ON DELETE CASCADE,
    xml_content   TEXT NOT NULL,
    file_path     TEXT,
    last_modified TEXT,
    checksum      TEXT
);

CREATE TABLE IF NOT EXISTS memoryMaps (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    metadata_id     INTEGER NOT NULL REFERENCES metadata(id) ON DELETE CASCADE,
    name            TEXT NOT NULL,
    description     TEXT,
    addressUnitBits INTEGER DEFAULT 8,
    endianness      TEXT CHECK (endianness IS NULL OR endianness IN ('little', 'big')),
    UNIQUE (metadata_id, name)
);

CREATE TABLE IF NOT EXISTS addressBlocks (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    memoryMap_id INTEGER NOT NULL REFERENCES memoryMaps(id) ON DELETE CASCADE,
    name         TEXT NOT NULL,
    description  TEXT,
    baseAddress  TEXT NOT NULL,
    "range"      TEXT NOT NULL,
    width        INTEGER NOT NULL DEFAULT 32 CHECK (width > 0),
    usage        TEXT,
    access       TEXT CHECK (access IS NULL OR access IN ('read-only', 'write-only', 'read-write', 'writeOnce', 'read-writeOnce')),
    UNIQUE (memoryMap_id, name)
);

CREATE TABLE IF NOT EXISTS registers (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    addressBlock_id INTEGER NOT NULL REFERENCES addressBlocks(id) ON DELETE CASCADE,
    name            TEXT NOT NULL,
    description     TEXT,
    addressOffset   TEXT NOT NULL,
    size            INTEGER NOT NULL DEFAULT 32 CHECK (size > 0),
    access          TEXT CHECK (access IS NULL OR access IN ('read-only', 'write-only', 'read-write', 'writeOnce', 'read-writeOnce')),
    volatile        INTEGER NOT NULL DEFAULT 0 CHECK (volatile IN (0, 1)),
    resetValue      TEXT,
    resetMask       TEXT,
    rand            INTEGER NOT NULL DEFAULT 0 CHECK (rand IN (0, 1)),
    dim             INTEGER NOT NULL DEFAULT 1 CHECK (dim > 0),
    UNIQUE (addressBlock_id, name)
);

CREATE TABLE IF NOT EXISTS fields (
    id                     INTEGER PRIMARY KEY AUTOINCREMENT,
    register_id            INTEGER NOT NULL REFERENCES registers(id) ON DELETE CASCADE,
    name                   TEXT NOT NULL,
    description            TEXT,
    displayName            TEXT,
    bitOffset              INTEGER NOT NULL CHECK (bitOffset >= 0),
    bitWidth               INTEGER NOT NULL CHECK (bitWidth > 0),
    access                 TEXT,
    resetValue             TEXT,
    resetTypeRef           TEXT,
    resetTrigger           TEXT,
    resetPolarity          TEXT,
    resetSynchronization   TEXT,
    resetDomain            TEXT,
    resetDependency        TEXT,
    resetSequence          TEXT,
    resetMask              TEXT,
    isVolatile             INTEGER NOT NULL DEFAULT 0 CHECK (isVolatile IN (0, 1)),
    isReserved             INTEGER NOT NULL DEFAULT 0 CHECK (isReserved IN (0, 1)),
    individuallyAccessible INTEGER NOT NULL DEFAULT 0 CHECK (individuallyAccessible IN (0, 1)),
    modifiedWriteValue     TEXT,
    readAction             TEXT,
    writeValueConstraint   TEXT,
    testable               INTEGER DEFAULT 1 CHECK (testable IS NULL OR testable IN (0, 1)),
    isPresent              TEXT,
    dependence             TEXT,
    typeIdentifier         TEXT,
    enumValuesRef          TEXT,
    longDescription        TEXT,
    groupName              TEXT,
    displayGroup           TEXT,
    alternateGroups        TEXT,
    usage                  TEXT,
    enumName               TEXT,
    enumValue              TEXT,
    enumDisplayName        TEXT,
    rand                   INTEGER NOT NULL DEFAULT 0 CHECK (rand IN (0, 1)),
    mirror                 INTEGER NOT NULL DEFAULT 0 CHECK (mirror IN (0, 1)),
    volatile               INTEGER NOT NULL DEFAULT 0 CHECK (volatile IN (0, 1)),
    UNIQUE (register_id, name)
);

CREATE TABLE IF NOT EXISTS enumerations (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    field_id    INTEGER NOT NULL REFERENCES fields(id) ON DELETE CASCADE,
    name        TEXT NOT NULL,
    value       TEXT NOT NULL,
    displayName TEXT,
    description TEXT,
    usage       TEXT,
    UNIQUE (field_id, name)
);

CREATE TABLE IF NOT EXISTS busInterfaces (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    metadata_id     INTEGER NOT NULL REFERENCES metadata(id) ON DELETE CASCADE,
    name            TEXT NOT NULL,
    busType         TEXT,
    abstractionType TEXT,
    interfaceMode   TEXT,
    displayName     TEXT,
    isPresent       TEXT,
    initiative      TEXT
);

CREATE TABLE IF NOT EXISTS ports (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    metadata_id INTEGER NOT NULL REFERENCES metadata(id) ON DELETE CASCADE,
    name        TEXT NOT NULL,
    description TEXT,
    direction   TEXT,
    isAddress   INTEGER DEFAULT 0 CHECK (isAddress IN (0, 1)),
    isData      INTEGER DEFAULT 0 CHECK (isData IN (0, 1)),
    width       INTEGER,
    displayName TEXT
);

CREATE TABLE IF NOT EXISTS parameters (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    metadata_id INTEGER NOT NULL REFERENCES metadata(id) ON DELETE CASCADE,
    name        TEXT NOT NULL,
    displayName TEXT,
    value       TEXT,
    description TEXT,
    type        TEXT,
    scope       TEXT
);

CREATE TABLE IF NOT EXISTS vendorExtensions (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    metadata_id INTEGER NOT NULL REFERENCES metadata(id) ON DELETE CASCADE,
    vendorId    TEXT,
    key         TEXT NOT NULL,
    value       TEXT
);

CREATE INDEX IF NOT EXISTS idx_memoryMaps_metadata ON memoryMaps(metadata_id);
CREATE INDEX IF NOT EXISTS idx_addressBlocks_memoryMap ON addressBlocks(memoryMap_id);
CREATE INDEX IF NOT EXISTS idx_registers_addressBlock ON registers(addressBlock_id);
CREATE INDEX IF NOT EXISTS idx_registers_name ON registers(name);
CREATE INDEX IF NOT EXISTS idx_fields_register ON fields(register_id);
CREATE INDEX IF NOT EXISTS idx_enumerations_field ON enumerations(field_id);
`

// Execer is the subset of *sql.DB and *sql.Tx used to apply the schema.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Apply creates all tables and indexes that do not exist yet.
func Apply(ctx context.Context, db Execer) error {
	if _, err := db.ExecContext(ctx, DDL); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}

// IsAccessToken reports whether s is one of the schema's access values.
func IsAccessToken(s string) bool {
	return slices.Contains(AccessTokens, s)
}
