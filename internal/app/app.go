package app

import (
	"fmt"
	"log"

	"github.com/anoixa/registration-system/config"
	"github.com/anoixa/registration-system/database"
	"github.com/anoixa/registration-system/database/repo/activations"
	"github.com/anoixa/registration-system/database/repo/devices"
	"github.com/anoixa/registration-system/internal/licensing"
)

// Container 依赖注入容器 - 管理所有服务的生命周期
type Container struct {
	config          *config.Config
	databaseFactory *database.Factory

	DevicesRepo     *devices.Repository
	ActivationsRepo *activations.Repository
	Engine          *licensing.Engine
}

// NewContainer 创建新的依赖注入容器
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config: cfg,
	}
}

// Init 初始化数据库和各组件
func (c *Container) Init() error {
	factory, err := database.NewFactory(c.config)
	if err != nil {
		return fmt.Errorf("failed to initialize database factory: %w", err)
	}
	c.databaseFactory = factory

	db := factory.GetProvider().DB()
	c.DevicesRepo = devices.NewRepository(db)
	c.ActivationsRepo = activations.NewRepository(db)
	c.Engine = licensing.NewEngine(factory.GetProvider())

	return nil
}

// GetDatabaseFactory 获取数据库工厂
func (c *Container) GetDatabaseFactory() *database.Factory {
	return c.databaseFactory
}

// GetConfig 获取配置
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// Close 关闭所有服务
func (c *Container) Close() error {
	if c.databaseFactory != nil {
		if err := c.databaseFactory.Close(); err != nil {
			log.Printf("Error closing database factory: %v", err)
		}
	}
	return nil
}
