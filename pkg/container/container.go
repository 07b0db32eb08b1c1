package container

import (
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

type ContainerType string

const (
	ContainerTypeMongoDB ContainerType = "mongodb"
)

type ContainerInfo struct {
	Name string
	Type ContainerType
}

// ContainerBuilder wraps a dockertest pool and tracks the containers it
// started so a test suite can prune them all at teardown.
type ContainerBuilder struct {
	pool       *dockertest.Pool
	containers map[string]ContainerInfo
}

func NewContainerBuilder(endpoint string) (*ContainerBuilder, error) {
	pool, err := dockertest.NewPool(endpoint)
	if err != nil {
		return nil, err
	}
	if err := pool.Client.Ping(); err != nil {
		return nil, err
	}
	return &ContainerBuilder{
		pool:       pool,
		containers: map[string]ContainerInfo{},
	}, nil
}

// FindContainer returns the container with the given name, or nil when no
// such container exists.
func (b *ContainerBuilder) FindContainer(name string) (*docker.APIContainers, error) {
	containers, err := b.pool.Client.ListContainers(docker.ListContainersOptions{All: true})
	if err != nil {
		return nil, err
	}
	for i := range containers {
		for _, n := range containers[i].Names {
			if n == "/"+name {
				return &containers[i], nil
			}
		}
	}
	return nil, nil
}

func (b *ContainerBuilder) RunWithOptions(opts *dockertest.RunOptions) (*dockertest.Resource, error) {
	return b.pool.RunWithOptions(opts)
}

func (b *ContainerBuilder) AddContainer(id string, info ContainerInfo) {
	b.containers[id] = info
}

func (b *ContainerBuilder) Retry(op func() error) error {
	return b.pool.Retry(op)
}

func (b *ContainerBuilder) PruneAll() error {
	for id := range b.containers {
		err := b.pool.Client.RemoveContainer(docker.RemoveContainerOptions{
			ID:            id,
			Force:         true,
			RemoveVolumes: true,
		})
		if err != nil {
			return err
		}
		delete(b.containers, id)
	}
	return nil
}
