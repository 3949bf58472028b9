/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package models holds the entities shipped with the module.
package models

import (
	"github.com/tomoncle/dao/database"
	"github.com/tomoncle/dao/types"
	"github.com/uptrace/bun"
)

func init() {
	database.RegisteredModel(database.NewModelAdapter((*Item)(nil), 10))
}

// Item is a minimal entity identified by a string.
type Item struct {
	bun.BaseModel `bun:"table:items" bson:"-" json:"-"`

	ID     string           `bun:"id,pk" bson:"_id" json:"id"`
	Data   string           `bun:"data" bson:"data" json:"data"`
	Labels types.JsonObject `bun:"labels,type:json" bson:"labels,omitempty" json:"labels,omitempty"`
}

func (i *Item) GetIdentifier() string {
	return i.ID
}

func (i *Item) SetIdentifier(id string) {
	i.ID = id
}
