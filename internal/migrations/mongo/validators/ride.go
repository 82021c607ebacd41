package validators

import "go.mongodb.org/mongo-driver/bson"

var RideValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"type",
			"owner_id",
			"origin",
			"destination",
			"departure_time",
			"status",
			"passengers",
			"version",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"type": bson.M{
				"bsonType": "string",
				"enum":     []string{"offer", "request"},
			},

			"owner_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 128,
			},

			"departure_time": bson.M{
				"bsonType": "date",
			},

			"available_seats": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  100,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum":     []string{"active", "full", "completed", "cancelled"},
			},

			"passengers": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"user_id", "seats_booked", "booking_status"},
					"properties": bson.M{
						"user_id": bson.M{
							"bsonType": "string",
						},
						"seats_booked": bson.M{
							"bsonType": []string{"int", "long"},
							"minimum":  1,
						},
						"booking_status": bson.M{
							"bsonType": "string",
							"enum":     []string{"pending", "confirmed", "cancelled"},
						},
					},
				},
			},

			"version": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},
		},
	},
}

var SlotLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "token", "expires_at"},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},
			"token": bson.M{
				"bsonType": "string",
			},
			"expires_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
