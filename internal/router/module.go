package router

import "github.com/gin-gonic/gin"

// Module describes a feature module that can register its routes on a RouterGroup
type Module interface {
	Register(rg *gin.RouterGroup)
}

// RootModule registers outside /api (health, metrics).
type RootModule interface {
	RegisterRoot(r *gin.Engine)
}
