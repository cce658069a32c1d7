package validators

import "go.mongodb.org/mongo-driver/bson"

var ReservationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"user_id",
			"hotel_id",
			"room_ids",
			"dates",
			"total_price",
			"payment_method",
			"payment_status",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"user_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"hotel_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"room_ids": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"items": bson.M{
					"bsonType":  "string",
					"minLength": 24,
					"maxLength": 24,
				},
			},

			"room_details": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
				},
			},

			"dates": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"items": bson.M{
					"bsonType": "date",
				},
			},

			"total_price": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"payment_method": bson.M{
				"bsonType": "string",
				"enum": []string{
					"ESEWA",
					"KHALTI",
					"CASH",
				},
			},

			"payment_status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"PENDING",
					"SUCCESS",
					"FAILED",
				},
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"PENDING",
					"CONFIRMED",
					"CANCEL_REQUESTED",
					"CANCELLED",
				},
			},

			"transaction_id": bson.M{
				"bsonType":  "string",
				"maxLength": 128,
			},

			"pidx": bson.M{
				"bsonType":  "string",
				"maxLength": 128,
			},

			"product_code": bson.M{
				"bsonType":  "string",
				"maxLength": 128,
			},

			"cancellation_requested_at": bson.M{
				"bsonType": "date",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
