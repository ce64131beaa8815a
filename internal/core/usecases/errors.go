package usecases

import "errors"

// ErrSiteInUse is returned when a site with attached pipelines is deleted.
var ErrSiteInUse = errors.New("site has attached pipelines")

// ErrPipelineExists is returned when a duplicate pipeline is created.
var ErrPipelineExists = errors.New("pipeline already exists between these sites")
