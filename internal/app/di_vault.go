package app

import (
	"fmt"

	ipanchorService "github.com/allisson/secrets/internal/ipanchor/service"
	vaultRepository "github.com/allisson/secrets/internal/skillvault/repository"
	skillvaultUsecase "github.com/allisson/secrets/internal/skillvault/usecase"
)

// PackageRepository returns the package repository. Only PostgreSQL is
// wired: the skill vault schema has no MySQL variant in this deployment.
func (c *Container) PackageRepository() (*vaultRepository.PostgreSQLPackageRepository, error) {
	var err error
	c.packageRepoInit.Do(func() {
		c.packageRepo, err = c.initPackageRepository()
		if err != nil {
			c.initErrors["packageRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["packageRepo"]; exists {
		return nil, storedErr
	}
	return c.packageRepo, nil
}

// KnowledgeRepository returns the encrypted knowledge repository.
func (c *Container) KnowledgeRepository() (*vaultRepository.PostgreSQLKnowledgeRepository, error) {
	var err error
	c.knowledgeRepoInit.Do(func() {
		c.knowledgeRepo, err = c.initKnowledgeRepository()
		if err != nil {
			c.initErrors["knowledgeRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["knowledgeRepo"]; exists {
		return nil, storedErr
	}
	return c.knowledgeRepo, nil
}

// ShareRepository returns the Shamir share repository.
func (c *Container) ShareRepository() (*vaultRepository.PostgreSQLShareRepository, error) {
	var err error
	c.shareRepoInit.Do(func() {
		c.shareRepo, err = c.initShareRepository()
		if err != nil {
			c.initErrors["shareRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["shareRepo"]; exists {
		return nil, storedErr
	}
	return c.shareRepo, nil
}

// IpAnchorRepository returns the IP anchor witness repository.
func (c *Container) IpAnchorRepository() (*vaultRepository.PostgreSQLIpAnchorRepository, error) {
	var err error
	c.ipAnchorRepoInit.Do(func() {
		c.ipAnchorRepo, err = c.initIpAnchorRepository()
		if err != nil {
			c.initErrors["ipAnchorRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["ipAnchorRepo"]; exists {
		return nil, storedErr
	}
	return c.ipAnchorRepo, nil
}

// IpAnchor returns the external witness registrar.
func (c *Container) IpAnchor() *ipanchorService.Anchor {
	c.ipAnchorInit.Do(func() {
		c.ipAnchor = ipanchorService.New(ipanchorService.Config{
			WitnessBackend: c.config.WitnessBackend,
			HMACSecret:     c.config.IPAnchorHMACSecret,
			GitHubRepo:     c.config.GitHubRepo,
			GitHubToken:    c.config.GitHubToken,
			CallTimeout:    c.config.ExternalCallTimeout,
		}, c.Logger())
	})
	return c.ipAnchor
}

// SkillVaultUseCase returns the skill vault use case: upload, read, revoke.
func (c *Container) SkillVaultUseCase() (skillvaultUsecase.UseCase, error) {
	var err error
	c.skillVaultInit.Do(func() {
		c.skillVault, err = c.initSkillVaultUseCase()
		if err != nil {
			c.initErrors["skillVault"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["skillVault"]; exists {
		return nil, storedErr
	}
	return c.skillVault, nil
}

func (c *Container) initPackageRepository() (*vaultRepository.PostgreSQLPackageRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for package repository: %w", err)
	}
	if c.config.DBDriver != "postgres" {
		return nil, fmt.Errorf("unsupported database driver for skill vault: %s", c.config.DBDriver)
	}
	return vaultRepository.NewPostgreSQLPackageRepository(db), nil
}

func (c *Container) initKnowledgeRepository() (*vaultRepository.PostgreSQLKnowledgeRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for knowledge repository: %w", err)
	}
	if c.config.DBDriver != "postgres" {
		return nil, fmt.Errorf("unsupported database driver for skill vault: %s", c.config.DBDriver)
	}
	return vaultRepository.NewPostgreSQLKnowledgeRepository(db), nil
}

func (c *Container) initShareRepository() (*vaultRepository.PostgreSQLShareRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for share repository: %w", err)
	}
	if c.config.DBDriver != "postgres" {
		return nil, fmt.Errorf("unsupported database driver for skill vault: %s", c.config.DBDriver)
	}
	return vaultRepository.NewPostgreSQLShareRepository(db), nil
}

func (c *Container) initIpAnchorRepository() (*vaultRepository.PostgreSQLIpAnchorRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for ip anchor repository: %w", err)
	}
	if c.config.DBDriver != "postgres" {
		return nil, fmt.Errorf("unsupported database driver for skill vault: %s", c.config.DBDriver)
	}
	return vaultRepository.NewPostgreSQLIpAnchorRepository(db), nil
}

func (c *Container) initSkillVaultUseCase() (skillvaultUsecase.UseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for skill vault use case: %w", err)
	}
	packageRepo, err := c.PackageRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get package repository for skill vault use case: %w", err)
	}
	knowledgeRepo, err := c.KnowledgeRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get knowledge repository for skill vault use case: %w", err)
	}
	shareRepo, err := c.ShareRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get share repository for skill vault use case: %w", err)
	}
	ipAnchorRepo, err := c.IpAnchorRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get ip anchor repository for skill vault use case: %w", err)
	}
	keyManager, err := c.KeyManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get key manager for skill vault use case: %w", err)
	}

	baseUseCase := skillvaultUsecase.New(
		txManager,
		packageRepo,
		knowledgeRepo,
		shareRepo,
		ipAnchorRepo,
		c.IpAnchor(),
		keyManager,
	)

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for skill vault use case: %w", err)
	}
	return skillvaultUsecase.NewSkillVaultUseCaseWithMetrics(baseUseCase, businessMetrics), nil
}
