package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/base/database/mongoclient"
	"github.com/x-xyz/mintingkit/base/log"
	"github.com/x-xyz/mintingkit/domain"
	"github.com/x-xyz/mintingkit/domain/minting"
	"github.com/x-xyz/mintingkit/service/query"
)

type impl struct {
	query query.Mongo
}

func New(query query.Mongo) minting.Repo {
	return &impl{query}
}

// EnsureIndexes creates the indexes used by the lookups of this repo
func EnsureIndexes(ctx ctx.Ctx, q query.Mongo) error {
	if err := q.EnsureIndex(ctx, domain.TableMintings, true, "id"); err != nil {
		ctx.WithField("err", err).Error("failed to ensure id index")
		return err
	}
	if err := q.EnsureIndex(ctx, domain.TableMintings, false, "projectId", "createdAt"); err != nil {
		ctx.WithField("err", err).Error("failed to ensure projectId index")
		return err
	}
	if err := q.EnsureIndex(ctx, domain.TableMintings, false, "destinationWallet"); err != nil {
		ctx.WithField("err", err).Error("failed to ensure destinationWallet index")
		return err
	}
	return nil
}

func (im *impl) Upsert(ctx ctx.Ctx, record *minting.Record) error {
	err := im.query.Upsert(ctx, domain.TableMintings, bson.M{"id": record.ID}, record)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":    err,
			"record": record,
		}).Error("failed to query.Upsert")
		return err
	}
	return nil
}

func (im *impl) Patch(ctx ctx.Ctx, id string, patch *minting.RecordPatch) error {
	updater, err := mongoclient.MakeBsonM(patch)
	if err != nil {
		ctx.WithField("err", err).Error("failed to mongoclient.MakeBsonM")
		return err
	}
	if len(updater) == 0 {
		return nil
	}

	err = im.query.Patch(ctx, domain.TableMintings, bson.M{"id": id}, updater)
	if errors.Is(err, query.ErrNotFound) {
		return domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":     err,
			"id":      id,
			"updater": updater,
		}).Error("failed to query.Patch")
		return err
	}
	return nil
}

func (im *impl) FindOne(ctx ctx.Ctx, id string) (*minting.Record, error) {
	res := minting.Record{}
	err := im.query.FindOne(ctx, domain.TableMintings, bson.M{"id": id}, &res)
	if errors.Is(err, query.ErrNotFound) {
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("failed to query.FindOne")
		return nil, err
	}
	return &res, nil
}

func (im *impl) FindAll(ctx ctx.Ctx, options ...minting.FindAllOptionsFunc) ([]*minting.Record, error) {
	opts, err := minting.GetFindAllOptions(options...)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("failed to minting.GetFindAllOptions")
		return nil, err
	}

	query := bson.M{}

	if opts.ProjectID != nil {
		query["projectId"] = *opts.ProjectID
	}

	if opts.DestinationWallet != nil {
		query["destinationWallet"] = *opts.DestinationWallet
	}

	if opts.Status != nil {
		query["status"] = *opts.Status
	}

	res := []*minting.Record{}
	err = im.query.Search(ctx, domain.TableMintings, 0, opts.Limit, "-createdAt", query, &res)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"query": query,
		}).Error("failed to query.Search")
		return nil, err
	}
	return res, nil
}
