package usecase

import (
	"github.com/mmrech/py-shiny/internal/adapters/fs"
)

type FileSystem = fs.FileSystem
