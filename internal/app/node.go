package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/sitepipe/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/sitepipe/internal/adapters/devserver" //nolint:depguard // Wired in app layer
	"go.trai.ch/sitepipe/internal/adapters/fs"        //nolint:depguard // Wired in app layer
	"go.trai.ch/sitepipe/internal/adapters/lint"      //nolint:depguard // Wired in app layer
	"go.trai.ch/sitepipe/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/sitepipe/internal/adapters/metrics"   //nolint:depguard // Wired in app layer
	"go.trai.ch/sitepipe/internal/adapters/scripts"   //nolint:depguard // Wired in app layer
	"go.trai.ch/sitepipe/internal/adapters/sprite"    //nolint:depguard // Wired in app layer
	"go.trai.ch/sitepipe/internal/adapters/stages"    //nolint:depguard // Wired in app layer
	"go.trai.ch/sitepipe/internal/adapters/styles"    //nolint:depguard // Wired in app layer
	"go.trai.ch/sitepipe/internal/adapters/templates" //nolint:depguard // Wired in app layer
	"go.trai.ch/sitepipe/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/sitepipe/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// HandlersNodeID is the unique identifier for the stage handler set Graft node.
	HandlersNodeID graft.ID = "app.handlers"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components holds what main needs to run the CLI.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[Handlers]{
		ID:        HandlersNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			templates.NodeID,
			styles.CompilerNodeID,
			styles.PostprocessorNodeID,
			scripts.NodeID,
			sprite.NodeID,
			lint.NodeID,
			stages.CopierNodeID,
		},
		Run: runHandlersNode,
	})

	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			logger.NodeID,
			fs.ResolverNodeID,
			fs.HasherNodeID,
			metrics.NodeID,
			watcher.NodeID,
			devserver.NodeID,
			HandlersNodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: app, Logger: log}, nil
		},
	})
}

func runHandlersNode(ctx context.Context) (Handlers, error) {
	tpl, err := graft.Dep[*templates.Handler](ctx)
	if err != nil {
		return Handlers{}, err
	}
	compiler, err := graft.Dep[*styles.Compiler](ctx)
	if err != nil {
		return Handlers{}, err
	}
	post, err := graft.Dep[*styles.Postprocessor](ctx)
	if err != nil {
		return Handlers{}, err
	}
	minifier, err := graft.Dep[*scripts.Minifier](ctx)
	if err != nil {
		return Handlers{}, err
	}
	builder, err := graft.Dep[*sprite.Builder](ctx)
	if err != nil {
		return Handlers{}, err
	}
	linter, err := graft.Dep[*lint.Linter](ctx)
	if err != nil {
		return Handlers{}, err
	}
	copier, err := graft.Dep[*stages.Copier](ctx)
	if err != nil {
		return Handlers{}, err
	}

	return Handlers{
		Templates:     tpl,
		Styles:        compiler,
		PostCSS:       post,
		MinifyScripts: minifier,
		Sprite:        builder,
		Lint:          linter,
		Copy:          copier,
	}, nil
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	resolver, err := graft.Dep[ports.InputResolver](ctx)
	if err != nil {
		return nil, err
	}
	hasher, err := graft.Dep[ports.Hasher](ctx)
	if err != nil {
		return nil, err
	}
	m, err := graft.Dep[ports.Metrics](ctx)
	if err != nil {
		return nil, err
	}
	w, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}
	server, err := graft.Dep[*devserver.Server](ctx)
	if err != nil {
		return nil, err
	}
	handlers, err := graft.Dep[Handlers](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, log, resolver, hasher, m, w, server, handlers), nil
}
