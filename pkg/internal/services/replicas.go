package services

import (
	"context"
	"io"

	"git.hoarder.pics/hoarder/gateway/pkg/internal/graph"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/models"
)

// Replica mutations declare no patch and no refetch set at all: the
// caller refreshes the containing medium explicitly once it is done
// changing replicas, so a batch of uploads costs one refresh.

const replicaFields = `
	id
	displayOrder
	originalUrl
	url
	mimeType
	width
	height
	status { phase }
	thumbnail { id width height url createdAt updatedAt }
	createdAt
	updatedAt
`

const createReplicaMutation = `mutation CreateReplica($mediumId: ID!, $file: Upload!) {
	createReplica(mediumId: $mediumId, file: $file) {` + replicaFields + `}
}`

const createReplicaFromURLMutation = `mutation CreateReplica($mediumId: ID!, $originalUrl: String!) {
	createReplica(mediumId: $mediumId, originalUrl: $originalUrl) {` + replicaFields + `}
}`

const deleteReplicaMutation = `mutation DeleteReplica($id: ID!) {
	deleteReplica(id: $id) { deleted }
}`

// CreateReplica uploads one file into a medium. Cancelling ctx aborts the
// in-flight upload; there are no retries. The returned replica usually
// starts in the PROCESSING phase; later transitions are backend-driven
// and show up on the next medium refresh.
func CreateReplica(ctx context.Context, gx graph.Uploader, mediumID, filename string, file io.Reader) (models.Replica, error) {
	var resp struct {
		CreateReplica *models.Replica `json:"createReplica"`
	}
	vars := map[string]any{
		"mediumId": mediumID,
		"file":     nil,
	}
	if err := gx.Upload(ctx, createReplicaMutation, vars, "variables.file", filename, file, &resp); err != nil {
		return models.Replica{}, err
	}
	if resp.CreateReplica == nil {
		return models.Replica{}, graph.ErrMissingPayload
	}

	return *resp.CreateReplica, nil
}

// CreateReplicaFromURL asks the backend to pull the file itself.
func CreateReplicaFromURL(ctx context.Context, gx graph.Runner, mediumID, originalURL string) (models.Replica, error) {
	var resp struct {
		CreateReplica *models.Replica `json:"createReplica"`
	}
	err := gx.Run(ctx, createReplicaFromURLMutation, map[string]any{
		"mediumId":    mediumID,
		"originalUrl": originalURL,
	}, &resp)
	if err != nil {
		return models.Replica{}, err
	}
	if resp.CreateReplica == nil {
		return models.Replica{}, graph.ErrMissingPayload
	}

	return *resp.CreateReplica, nil
}

func DeleteReplica(ctx context.Context, gx graph.Runner, id string) (bool, error) {
	var resp struct {
		DeleteReplica *struct {
			Deleted bool `json:"deleted"`
		} `json:"deleteReplica"`
	}
	if err := gx.Run(ctx, deleteReplicaMutation, map[string]any{"id": id}, &resp); err != nil {
		return false, err
	}
	if resp.DeleteReplica == nil {
		return false, graph.ErrMissingPayload
	}

	return resp.DeleteReplica.Deleted, nil
}
