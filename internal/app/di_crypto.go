package app

import (
	"context"
	"fmt"

	cryptoDomain "github.com/allisson/secrets/internal/crypto/domain"
	cryptoService "github.com/allisson/secrets/internal/crypto/service"
)

// KEK returns the process-wide key-encryption key, loaded once at boot and
// held only in process memory for the process lifetime. Plain-hex mode
// reads it directly from KEKHex; setting KMSProvider/KMSKeyURI switches to
// unwrapping it through that KMS instead.
func (c *Container) KEK() ([]byte, error) {
	var err error
	c.kekInit.Do(func() {
		c.kek, err = cryptoService.LoadKEK(
			context.Background(),
			c.config.KEKHex,
			c.config.KMSProvider,
			c.config.KMSKeyURI,
			c.KMSService(),
			c.Logger(),
		)
		if err != nil {
			c.initErrors["kek"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["kek"]; exists {
		return nil, storedErr
	}
	return c.kek, nil
}

// AEADManager returns the AEAD cipher factory.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.aeadManager = cryptoService.NewAEADManager()
	})
	return c.aeadManager
}

// KMSService returns the KMS service used to unwrap a KMS-wrapped KEK.
// Unused in plain-hex mode.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// KeyManager returns the key manager bound to the process KEK.
func (c *Container) KeyManager() (cryptoService.KeyManager, error) {
	var err error
	c.keyManagerInit.Do(func() {
		c.keyManager, err = c.initKeyManager()
		if err != nil {
			c.initErrors["keyManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyManager"]; exists {
		return nil, storedErr
	}
	return c.keyManager, nil
}

// initKeyManager loads the process KEK and binds it to a KeyManagerService
// under AES-256-GCM.
func (c *Container) initKeyManager() (cryptoService.KeyManager, error) {
	kek, err := c.KEK()
	if err != nil {
		return nil, fmt.Errorf("failed to load kek for key manager: %w", err)
	}
	return cryptoService.NewKeyManager(
		c.AEADManager(),
		cryptoDomain.AESGCM,
		kek,
		c.config.PlaintextMaxBytes,
	), nil
}
