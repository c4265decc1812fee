package config

import (
	"github.com/pkg/errors"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
)

const (
	defaultPacksProgramID            = "packFeFNZzMfD9aVWL7QbGz1WcU7R9zpf6pvNsw2BLu"
	defaultTokenProgramID            = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	defaultTokenMetadataProgramID    = "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"
	defaultRandomnessOracleProgramID = "rndshKFf48HhGaPbaCd3WQYtgCNKzRgVQ3U2we4Cvf9"
	defaultSystemProgramID           = "11111111111111111111111111111111"
)

type RentConfig struct {
	LamportsPerByteYear uint64  `yaml:"lamportsPerByteYear"`
	ExemptionThreshold  float64 `yaml:"exemptionThreshold"`
	StorageOverhead     uint64  `yaml:"storageOverhead"`
}

// WithDefaults returns a copy of the RentConfig with any missing fields set to
// their default values.
func (c RentConfig) WithDefaults() RentConfig {
	cpy := c
	if cpy.LamportsPerByteYear == 0 {
		cpy.LamportsPerByteYear = state.DefaultRent.LamportsPerByteYear
	}
	if cpy.ExemptionThreshold == 0 {
		cpy.ExemptionThreshold = state.DefaultRent.ExemptionThreshold
	}
	if cpy.StorageOverhead == 0 {
		cpy.StorageOverhead = state.DefaultRent.StorageOverhead
	}
	return cpy
}

func (c RentConfig) Rent() state.Rent {
	return state.Rent{
		LamportsPerByteYear: c.LamportsPerByteYear,
		ExemptionThreshold:  c.ExemptionThreshold,
		StorageOverhead:     c.StorageOverhead,
	}
}

type PacksConfig struct {
	// Identity of the packs program; records it owns carry this owner.
	ProgramID string `yaml:"programId"`
	// External programs, base58 encoded.
	TokenProgramID            string     `yaml:"tokenProgramId"`
	TokenMetadataProgramID    string     `yaml:"tokenMetadataProgramId"`
	RandomnessOracleProgramID string     `yaml:"randomnessOracleProgramId"`
	SystemProgramID           string     `yaml:"systemProgramId"`
	Rent                      RentConfig `yaml:"rent"`
}

// WithDefaults returns a copy of the PacksConfig with any missing fields set to
// their default values.
func (c PacksConfig) WithDefaults() PacksConfig {
	cpy := c
	if cpy.ProgramID == "" {
		cpy.ProgramID = defaultPacksProgramID
	}
	if cpy.TokenProgramID == "" {
		cpy.TokenProgramID = defaultTokenProgramID
	}
	if cpy.TokenMetadataProgramID == "" {
		cpy.TokenMetadataProgramID = defaultTokenMetadataProgramID
	}
	if cpy.RandomnessOracleProgramID == "" {
		cpy.RandomnessOracleProgramID = defaultRandomnessOracleProgramID
	}
	if cpy.SystemProgramID == "" {
		cpy.SystemProgramID = defaultSystemProgramID
	}
	cpy.Rent = cpy.Rent.WithDefaults()
	return cpy
}

// ProgramIDSet is the parsed form of the program identities in PacksConfig.
type ProgramIDSet struct {
	Packs            state.Pubkey
	Token            state.Pubkey
	TokenMetadata    state.Pubkey
	RandomnessOracle state.Pubkey
	System           state.Pubkey
}

// ProgramIDs parses the configured program identities.
func (c PacksConfig) ProgramIDs() (ProgramIDSet, error) {
	ids := ProgramIDSet{}
	fields := []struct {
		name  string
		value string
		dst   *state.Pubkey
	}{
		{"programId", c.ProgramID, &ids.Packs},
		{"tokenProgramId", c.TokenProgramID, &ids.Token},
		{"tokenMetadataProgramId", c.TokenMetadataProgramID, &ids.TokenMetadata},
		{
			"randomnessOracleProgramId",
			c.RandomnessOracleProgramID,
			&ids.RandomnessOracle,
		},
		{"systemProgramId", c.SystemProgramID, &ids.System},
	}

	for _, f := range fields {
		key, err := state.PubkeyFromString(f.value)
		if err != nil {
			return ProgramIDSet{}, errors.Wrapf(err, "program ids: %s", f.name)
		}
		*f.dst = key
	}

	return ids, nil
}
