package appdb

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/MinterTeam/minter-swap/config"
	"github.com/MinterTeam/minter-swap/coreV2/types"
	"github.com/pkg/errors"
	tmjson "github.com/tendermint/tendermint/libs/json"
	"github.com/tendermint/tm-db"
)

const (
	heightPath     = "height"
	versionsPath   = "versions"
	deploymentPath = "deployment"

	dbName = "app"
)

// AppDB is responsible for storing basic information about app state on disk
type AppDB struct {
	db db.DB
	mu sync.Mutex

	lastHeight uint64

	isDirtyVersions bool
	versions        []*Version
}

// Deployment lists the handles of a deployed exchange graph. Routers and the
// migrator keep no state of their own, so only their addresses survive a
// restart.
type Deployment struct {
	Wallet                types.Address `json:"wallet"`
	Token0                types.Address `json:"token0"`
	Token1                types.Address `json:"token1"`
	RewardToken           types.Address `json:"reward_token"`
	WETH                  types.Address `json:"weth"`
	WETHPartner           types.Address `json:"weth_partner"`
	FactoryV1             types.Address `json:"factory_v1"`
	FactoryV2             types.Address `json:"factory_v2"`
	StakingRewardsFactory types.Address `json:"staking_rewards_factory"`
	Router01              types.Address `json:"router01"`
	Router02              types.Address `json:"router02"`
	LiquidityStaker       types.Address `json:"liquidity_staker"`
	Migrator              types.Address `json:"migrator"`
}

// OpenDB opens the named database in the data directory of cfg.
func OpenDB(name string, cfg *config.Config) (db.DB, error) {
	ldb, err := db.NewDB(name, db.BackendType(cfg.DBBackend), cfg.DBDir())
	if err != nil {
		return nil, errors.Wrapf(err, "open %s db", name)
	}
	return ldb, nil
}

// NewAppDB creates AppDB instance with given config
func NewAppDB(cfg *config.Config) (*AppDB, error) {
	newDB, err := OpenDB(dbName, cfg)
	if err != nil {
		return nil, err
	}
	return &AppDB{db: newDB}, nil
}

// Close closes db connection
func (appDB *AppDB) Close() error {
	return appDB.db.Close()
}

// GetLastHeight returns latest committed height stored on disk
func (appDB *AppDB) GetLastHeight() (uint64, error) {
	if val := atomic.LoadUint64(&appDB.lastHeight); val != 0 {
		return val, nil
	}

	result, err := appDB.db.Get([]byte(heightPath))
	if err != nil {
		return 0, err
	}

	var val uint64
	if len(result) != 0 {
		val = binary.BigEndian.Uint64(result)
		atomic.StoreUint64(&appDB.lastHeight, val)
	}

	return val, nil
}

// SetLastHeight stores given height on disk
func (appDB *AppDB) SetLastHeight(height uint64) error {
	h := make([]byte, 8)
	binary.BigEndian.PutUint64(h, height)
	if err := appDB.db.SetSync([]byte(heightPath), h); err != nil {
		return err
	}

	atomic.StoreUint64(&appDB.lastHeight, height)
	return nil
}

// GetDeployment returns the stored deployment, false when nothing was deployed yet
func (appDB *AppDB) GetDeployment() (*Deployment, bool, error) {
	result, err := appDB.db.Get([]byte(deploymentPath))
	if err != nil {
		return nil, false, err
	}
	if len(result) == 0 {
		return nil, false, nil
	}

	deployment := new(Deployment)
	if err := tmjson.Unmarshal(result, deployment); err != nil {
		return nil, false, errors.Wrap(err, "decode deployment")
	}
	return deployment, true, nil
}

func (appDB *AppDB) SetDeployment(deployment *Deployment) error {
	data, err := tmjson.Marshal(deployment)
	if err != nil {
		return err
	}
	return appDB.db.SetSync([]byte(deploymentPath), data)
}

// Version is the application version that started writing at Height
type Version struct {
	Name   string `json:"name"`
	Height uint64 `json:"height"`
}

func (appDB *AppDB) GetVersionName(height uint64) (string, error) {
	versions, err := appDB.GetVersions()
	if err != nil {
		return "", err
	}

	lastVersionName := ""
	for _, version := range versions {
		if version.Height > height {
			return lastVersionName, nil
		}
		lastVersionName = version.Name
	}

	return lastVersionName, nil
}

func (appDB *AppDB) GetVersions() ([]*Version, error) {
	appDB.mu.Lock()
	defer appDB.mu.Unlock()

	return appDB.getVersions()
}

func (appDB *AppDB) getVersions() ([]*Version, error) {
	if len(appDB.versions) != 0 {
		return appDB.versions, nil
	}

	result, err := appDB.db.Get([]byte(versionsPath))
	if err != nil {
		return nil, err
	}
	if len(result) != 0 {
		if err := tmjson.Unmarshal(result, &appDB.versions); err != nil {
			return nil, errors.Wrap(err, "decode versions")
		}
	}

	return appDB.versions, nil
}

// AddVersion records v as the version running from height on. Repeating the
// latest version is a no-op.
func (appDB *AppDB) AddVersion(v string, height uint64) error {
	appDB.mu.Lock()
	defer appDB.mu.Unlock()

	versions, err := appDB.getVersions()
	if err != nil {
		return err
	}
	if len(versions) != 0 && versions[len(versions)-1].Name == v {
		return nil
	}

	appDB.versions = append(versions, &Version{Name: v, Height: height})
	appDB.isDirtyVersions = true
	return nil
}

func (appDB *AppDB) SaveVersions() error {
	appDB.mu.Lock()
	defer appDB.mu.Unlock()

	if !appDB.isDirtyVersions {
		return nil
	}
	data, err := tmjson.Marshal(appDB.versions)
	if err != nil {
		return err
	}
	if err := appDB.db.SetSync([]byte(versionsPath), data); err != nil {
		return err
	}

	appDB.isDirtyVersions = false
	return nil
}

