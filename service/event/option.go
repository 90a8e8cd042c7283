package event

import (
	"github.com/viant/gatekeeper/service/messaging/fs"
	"github.com/viant/gatekeeper/service/messaging/memory"
)

type Option func(s *Service)

// WithNewFsQueueConfig sets the file system queue configuration factory
func WithNewFsQueueConfig(newConfig func(name string) fs.Config) Option {
	return func(s *Service) {
		s.fsNewQueueConfig = newConfig
	}
}

// WithNewMemoryQueueConfig sets the memory queue configuration factory
func WithNewMemoryQueueConfig(newConfig func(name string) memory.Config) Option {
	return func(s *Service) {
		s.memNewQueueConfig = newConfig
	}
}
